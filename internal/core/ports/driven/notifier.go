package driven

import "context"

// ContactMessage is a contact-form submission relayed to the support
// channel.
type ContactMessage struct {
	Name    string
	Email   string
	Topic   string
	Subject string
	Body    string
}

// Notifier delivers contact messages to an external destination.
type Notifier interface {
	// Notify sends one contact message.
	Notify(ctx context.Context, msg ContactMessage) error
}
