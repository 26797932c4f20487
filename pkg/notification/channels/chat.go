package channels

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/slack-go/slack"

	"github.com/nodeguardian/nodeguardian/pkg/notification"
)

// chatDeadline bounds a single chat delivery.
const chatDeadline = 10 * time.Second

// ChatChannel posts a pre-shaped message to a Slack incoming webhook.
type ChatChannel struct {
	webhookURL string
	log        logr.Logger
}

// NewChat builds a ChatChannel posting to webhookURL.
func NewChat(webhookURL string, log logr.Logger) *ChatChannel {
	return &ChatChannel{webhookURL: webhookURL, log: log.WithName("alert-channel-chat")}
}

// Name implements notification.Channel.
func (c *ChatChannel) Name() string { return "chat" }

// Send implements notification.Channel.
func (c *ChatChannel) Send(ctx context.Context, subject, body string, _ notification.Phase, _ notification.AlertContext) error {
	ctx, cancel := context.WithTimeout(ctx, chatDeadline)
	defer cancel()

	msg := slack.WebhookMessage{
		Text: subject,
		Attachments: []slack.Attachment{
			{Text: body},
		},
	}
	return slack.PostWebhookContext(ctx, c.webhookURL, &msg)
}
