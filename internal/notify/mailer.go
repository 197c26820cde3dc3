package notify

import (
	"github.com/Kapsk2801/Lost-Found/internal/config"
	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"
)

// A Mailer sends emails.
type Mailer interface {
	Send(to []string, subject, body string) error
}

// An SMTP sends emails through an SMTP relay.
type SMTP struct {
	dialer *gomail.Dialer
	sender string
}

// NewSMTP returns an SMTP mailer, or nil when no host is configured.
func NewSMTP(cfg config.Mail) *SMTP {
	if cfg.Host == "" {
		return nil
	}

	sender := cfg.Sender
	if sender == "" {
		sender = cfg.Username
	}

	return &SMTP{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		sender: sender,
	}
}

// Send sends a plain text email to the given recipients.
func (m *SMTP) Send(to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}

	message := gomail.NewMessage()
	message.SetHeader("From", m.sender)
	message.SetHeader("To", to...)
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", body)

	return errors.Wrap(m.dialer.DialAndSend(message), "could not send mail")
}
