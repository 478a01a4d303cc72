package notify

import (
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SendError reports a failed notification delivery. Post-run notices
// log and swallow it; explicit test sends surface it to the caller.
type SendError struct {
	Err error
}

func (e *SendError) Error() string { return fmt.Sprintf("send notification: %v", e.Err) }
func (e *SendError) Unwrap() error { return e.Err }

// Mailer delivers a single HTML message.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends mail through an SMTP relay using STARTTLS.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// compile-time check that SMTPMailer implements Mailer
var _ Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(host string, port int, from, password string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, from, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	if m.from == "" {
		return &SendError{Err: errors.New("smtp sender not configured")}
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return &SendError{Err: err}
	}
	return nil
}
