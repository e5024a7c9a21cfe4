package email

import "context"

// Message is one outbound plain-text email.
type Message struct {
	FromName    string
	FromAddress string
	To          string
	Subject     string
	Body        string
}

// Session is an open, authenticated connection to the mail server.
// It is used by one goroutine for a whole batch and must be closed.
type Session interface {
	Send(ctx context.Context, msg *Message) error
	Close() error
}

// Dialer opens mail sessions.
// This keeps the application logic independent of the SMTP library.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}
