package mailer

import (
	"fmt"
	"log"
	"time"

	"gopkg.in/gomail.v2"
)

// Mailer sends the transactional emails of the service.
type Mailer interface {
	SendPasswordReset(to, name, code string, ttl time.Duration) error
}

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers mail through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) SendPasswordReset(to, name, code string, ttl time.Duration) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Reset your password")
	msg.SetBody("text/plain", passwordResetText(name, code, ttl))
	msg.AddAlternative("text/html", passwordResetHTML(name, code, ttl))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func passwordResetText(name, code string, ttl time.Duration) string {
	return fmt.Sprintf(`Hello %s,

Your password reset code is: %s

The code expires in %d minutes. If you did not ask to reset your password, ignore this email.
`, name, code, int(ttl.Minutes()))
}

func passwordResetHTML(name, code string, ttl time.Duration) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Hello %s,</h2>
    <p>Your password reset code is:</p>
    <p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">%s</p>
    <p><small>The code expires in %d minutes.</small></p>
    <p>If you did not ask to reset your password, ignore this email.</p>
</body>
</html>`, name, code, int(ttl.Minutes()))
}

// LogMailer writes mail to the log instead of sending it. Used when no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(to, _, code string, ttl time.Duration) error {
	log.Printf("password reset code for %s: %s (valid %s)", to, code, ttl)
	return nil
}
