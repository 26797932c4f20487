// Package channels implements the four NodeGuardian alert delivery
// mechanisms: log, email, webhook, and chat.
package channels

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/nodeguardian/nodeguardian/pkg/notification"
)

// LogChannel emits a structured log line: warn for a trigger alert, info for
// a recovery alert.
type LogChannel struct {
	log logr.Logger
}

// NewLog builds a LogChannel.
func NewLog(log logr.Logger) *LogChannel {
	return &LogChannel{log: log.WithName("alert-channel-log")}
}

// Name implements notification.Channel.
func (c *LogChannel) Name() string { return "log" }

// Send implements notification.Channel. logr has no dedicated warn level, so
// the trigger/recovery distinction is carried as a "level"
// field rather than a verbosity change.
func (c *LogChannel) Send(_ context.Context, subject, body string, phase notification.Phase, alertCtx notification.AlertContext) error {
	level := "warn"
	if phase == notification.PhaseRecovery {
		level = "info"
	}
	c.log.Info("alert", "level", level, "rule", alertCtx.RuleName, "severity", alertCtx.Severity, "subject", subject, "body", body)
	return nil
}
