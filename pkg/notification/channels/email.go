package channels

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/go-logr/logr"

	"github.com/nodeguardian/nodeguardian/internal/config"
	"github.com/nodeguardian/nodeguardian/pkg/notification"
)

// EmailChannel delivers alerts over SMTP, defaulting to STARTTLS, with an
// optional direct-SSL mode for endpoints that expect implicit TLS on
// connect.
type EmailChannel struct {
	cfg config.EmailConfig
	log logr.Logger
}

// NewEmail builds an EmailChannel from the resolved email configuration.
func NewEmail(cfg config.EmailConfig, log logr.Logger) *EmailChannel {
	return &EmailChannel{cfg: cfg, log: log.WithName("alert-channel-email")}
}

// Name implements notification.Channel.
func (c *EmailChannel) Name() string { return "email" }

// Send implements notification.Channel. The message is a multipart
// alternative with a plain-text part (the rendered body) and an HTML part
// wrapping it in <pre>, since the template engine produces plain text only.
func (c *EmailChannel) Send(_ context.Context, subject, body string, _ notification.Phase, _ notification.AlertContext) error {
	if !c.cfg.Enabled {
		return fmt.Errorf("email channel not configured")
	}

	msg := buildMIMEMessage(c.cfg.From, c.cfg.To, subject, body)

	addr := c.cfg.SMTPHost
	if c.cfg.SMTPPort != 0 && !strings.Contains(addr, ":") {
		addr = fmt.Sprintf("%s:%d", addr, c.cfg.SMTPPort)
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	if c.cfg.StartTLS {
		return sendSTARTTLS(addr, host, c.cfg.From, c.cfg.To, msg)
	}
	return sendImplicitTLS(addr, host, c.cfg.From, c.cfg.To, msg)
}

func buildMIMEMessage(from string, to []string, subject, body string) []byte {
	boundary := "nodeguardian-alert-boundary"
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(body)
	b.WriteString("\r\n\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString("<pre>" + body + "</pre>\r\n\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

func sendSTARTTLS(addr, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	return deliver(client, from, to, msg)
}

func sendImplicitTLS(addr, host string, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	return deliver(client, from, to, msg)
}

func deliver(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
