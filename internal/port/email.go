package port

import "context"

// EmailMessage is a plain-text email.
type EmailMessage struct {
	To      []string
	Subject string
	Body    string
}

// EmailSender delivers notification emails. Implementations are best-effort;
// callers log and continue on failure.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}
