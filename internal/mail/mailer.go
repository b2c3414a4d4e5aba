// Package mail sends plain-text application email (password resets, daily
// reports) over SMTP.
package mail

import (
	"fmt"

	"github.com/AshirwadShaligram/finance-backend/internal/config"

	"gopkg.in/gomail.v2"
)

// Sender delivers a plain-text message to a single recipient. Handlers and
// jobs depend on this interface so tests can stub delivery.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends mail through the configured SMTP relay.
type SMTPSender struct {
	cfg config.MailConfig
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
