// Package pubsub delivers issue events to per-project topics. Delivery is
// best-effort: callers treat publish failures as log-and-continue.
package pubsub

import (
	"context"
	"log/slog"
)

// Publisher pushes a payload to a named topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// LogPublisher is the fallback sink used when no broker is configured.
// It writes each event to the structured log and never fails.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, topic string, payload any) error {
	slog.InfoContext(ctx, "Publishing event", slog.String("topic", topic), slog.Any("payload", payload))
	return nil
}
