package notifications

import (
	"context"
	"fmt"
)

// Email addresses one account holder.
type Email struct {
	To   string
	Name string
}

// Notifier sends the account lifecycle emails.
type Notifier interface {
	SendWelcome(ctx context.Context, to Email) error
	SendCancellation(ctx context.Context, to Email) error
}

type Kind string

const (
	KindWelcome      Kind = "welcome"
	KindCancellation Kind = "cancellation"
)

// Message is the rendered subject and plain-text body of an email.
type Message struct {
	Subject string
	Text    string
}

func Compose(kind Kind, name string) (Message, error) {
	switch kind {
	case KindWelcome:
		return Message{
			Subject: "Thanks for joining in",
			Text:    fmt.Sprintf("Welcome to the app, %s", name),
		}, nil
	case KindCancellation:
		return Message{
			Subject: "Thanks for having used our app",
			Text:    fmt.Sprintf("We're sad to see you leave %s. Is there anything we could do?", name),
		}, nil
	default:
		return Message{}, fmt.Errorf("unknown email kind %q", kind)
	}
}
