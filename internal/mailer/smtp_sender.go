package mailer

import (
	"context"
	"time"

	"github.com/wneessen/go-mail"
)

type smtpSender struct {
	creds   Credentials
	timeout time.Duration
}

func NewSMTPSender(creds Credentials, timeout time.Duration) Sender {
	if creds.Port == 0 {
		creds.Port = 587
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &smtpSender{creds: creds, timeout: timeout}
}

func (s *smtpSender) Send(ctx context.Context, msg Message, contentType ContentType) error {
	m := mail.NewMsg()

	var err error
	if msg.FromName != "" {
		err = m.FromFormat(msg.FromName, msg.From)
	} else {
		err = m.From(msg.From)
	}
	if err != nil {
		return err
	}
	if err := m.To(msg.To); err != nil {
		return err
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return err
		}
	}
	m.Subject(msg.Subject)

	if contentType == ContentHTML {
		m.SetBodyString(mail.TypeTextHTML, msg.Body)
	} else {
		m.SetBodyString(mail.TypeTextPlain, msg.Body)
	}

	client, err := mail.NewClient(s.creds.Host,
		mail.WithPort(s.creds.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.creds.Username),
		mail.WithPassword(s.creds.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(s.timeout),
	)
	if err != nil {
		return err
	}

	return client.DialAndSendWithContext(ctx, m)
}
