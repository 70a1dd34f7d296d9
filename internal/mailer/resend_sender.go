package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"
)

type resendSender struct {
	client *resend.Client
}

func NewResendSender(apiKey string) Sender {
	return &resendSender{client: resend.NewClient(apiKey)}
}

func (s *resendSender) Send(ctx context.Context, msg Message, contentType ContentType) error {
	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", msg.FromName, msg.From)
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		ReplyTo: msg.ReplyTo,
	}
	if contentType == ContentHTML {
		params.Html = msg.Body
	} else {
		params.Text = msg.Body
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	return err
}
