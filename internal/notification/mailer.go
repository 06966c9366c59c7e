package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/spec-kit/signals-service/internal/config"
)

// Message is one outgoing notification email.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Mailer abstracts the mail transport so integrations can be tested
// without a running SMTP server.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers messages over plain SMTP.
type SMTPMailer struct {
	cfg config.EmailConfig
}

// NewSMTPMailer builds the transport from config.
func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send delivers one message. Transport timeouts are left to the
// net/smtp defaults.
func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort

	raw := "From: " + msg.From + "\r\n" +
		"To: " + strings.Join(msg.To, ", ") + "\r\n" +
		"Subject: " + msg.Subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		msg.Body

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, msg.From, msg.To, []byte(raw)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
