package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPMailer sends mail through a plain SMTP relay. Campus mail setups
// terminate TLS at the relay, so PlainAuth over the submission port covers
// the deployment targets.
type SMTPMailer struct {
	Addr string // host:port
	From string
	Auth smtp.Auth
}

// NewSMTPMailer configures a relay client. Username may be empty for
// relays that allow unauthenticated submission from inside the network.
func NewSMTPMailer(addr, from, username, password string) *SMTPMailer {
	m := &SMTPMailer{Addr: addr, From: from}
	if username != "" {
		host, _, _ := strings.Cut(addr, ":")
		m.Auth = smtp.PlainAuth("", username, password, host)
	}
	return m
}

func (m *SMTPMailer) SendOTPCode(ctx context.Context, to, name, code string) error {
	subject := "Your portal login code"
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\nYour one-time login code is: %s\r\n\r\nIt expires in 5 minutes. If you did not try to log in, change your password immediately.\r\n",
		name, code,
	)
	return m.send(ctx, to, subject, body)
}

func (m *SMTPMailer) SendTemporaryPassword(ctx context.Context, to, name, password string) error {
	subject := "Your portal password has been reset"
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\nA password reset was requested for your account. Your temporary password is: %s\r\n\r\nYou will be asked to choose a new password on your next login.\r\n",
		name, password,
	)
	return m.send(ctx, to, subject, body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(m.Addr, m.Auth, m.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}
	return nil
}
