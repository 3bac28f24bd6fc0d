// Package mailer delivers transactional mail for the bookshop
// backend. Delivery is fire-and-forget from the product's point of
// view: there is no queue and no retry, a failed send surfaces to
// the caller.
package mailer

import "context"

// Message is one outbound mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages. The SMTP implementation is the only one
// shipped; tests substitute capturing fakes.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
