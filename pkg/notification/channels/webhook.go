package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/nodeguardian/nodeguardian/pkg/notification"
)

// webhookDeadline bounds a single POST.
const webhookDeadline = 30 * time.Second

// WebhookChannel POSTs the full alert context as JSON to a configured URL.
type WebhookChannel struct {
	url    string
	client *http.Client
	log    logr.Logger
}

// NewWebhook builds a WebhookChannel targeting url.
func NewWebhook(url string, log logr.Logger) *WebhookChannel {
	return &WebhookChannel{
		url:    url,
		client: &http.Client{Timeout: webhookDeadline},
		log:    log.WithName("alert-channel-webhook"),
	}
}

// Name implements notification.Channel.
func (c *WebhookChannel) Name() string { return "webhook" }

type webhookPayload struct {
	Subject string                 `json:"subject"`
	Body    string                 `json:"body"`
	Phase   string                 `json:"phase"`
	Context notification.AlertContext `json:"context"`
}

// Send implements notification.Channel. HTTP 2xx is success; 4xx/5xx is a
// ChannelError, not retried here since webhook delivery is at-least-once
// upstream.
func (c *WebhookChannel) Send(ctx context.Context, subject, body string, phase notification.Phase, alertCtx notification.AlertContext) error {
	payload, err := json.Marshal(webhookPayload{Subject: subject, Body: body, Phase: string(phase), Context: alertCtx})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, webhookDeadline)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
