package internal

import (
	"context"
	"time"
)

const defaultRequestTimeout = 5 * time.Second

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = defaultRequestTimeout
	}
	return context.WithTimeout(ctx, duration)
}

// Detached keeps the values of ctx (request id, logger) but drops its
// deadline, for work that must outlive the request such as event publishing.
func Detached(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}
