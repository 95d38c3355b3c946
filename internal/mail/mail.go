// Package mail defines the outbound email collaborator. Delivery is
// fire-and-forget from callers; failures are logged, never surfaced to users.
package mail

import (
	"context"
	"log/slog"
)

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender writes messages to the structured log instead of sending them.
// It stands in for a real provider in development and tests.
type LogSender struct {
	From string
}

func NewLogSender(from string) *LogSender {
	return &LogSender{From: from}
}

func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	slog.InfoContext(ctx, "mail delivered to log",
		"from", s.From,
		"to", to,
		"subject", subject,
		"body_bytes", len(body),
	)
	return nil
}
