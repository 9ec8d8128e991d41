package notifications

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Sender is the part of *sendgrid.Client the notifier uses.
type Sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridNotifier struct {
	client   Sender
	from     string
	fromName string
}

func NewSendGridNotifier(apiKey, from string) *SendGridNotifier {
	return NewSendGridNotifierWithSender(sendgrid.NewSendClient(apiKey), from)
}

func NewSendGridNotifierWithSender(client Sender, from string) *SendGridNotifier {
	return &SendGridNotifier{client: client, from: from, fromName: "Task Manager"}
}

func (n *SendGridNotifier) SendWelcome(ctx context.Context, to Email) error {
	return n.send(ctx, KindWelcome, to)
}

func (n *SendGridNotifier) SendCancellation(ctx context.Context, to Email) error {
	return n.send(ctx, KindCancellation, to)
}

func (n *SendGridNotifier) send(ctx context.Context, kind Kind, to Email) error {
	msg, err := Compose(kind, to.Name)
	if err != nil {
		return err
	}

	email := mail.NewSingleEmailPlainText(
		mail.NewEmail(n.fromName, n.from),
		msg.Subject,
		mail.NewEmail(to.Name, to.To),
		msg.Text,
	)

	resp, err := n.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send %s: %w", kind, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned error status: %d", resp.StatusCode)
	}
	return nil
}
