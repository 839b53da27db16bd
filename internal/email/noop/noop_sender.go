package noop

import (
	"context"
	"log"

	"fundscope/internal/port"
)

type noopSender struct {
	logger *log.Logger
}

// NewNoopSender returns an EmailSender that only logs. Used in local
// development and when no email provider is configured.
func NewNoopSender(logger *log.Logger) port.EmailSender {
	if logger == nil {
		logger = log.Default()
	}
	return &noopSender{logger: logger}
}

func (s *noopSender) Send(ctx context.Context, msg port.EmailMessage) error {
	s.logger.Printf("[INFO] email (noop): to=%v subject=%q", msg.To, msg.Subject)
	return nil
}
