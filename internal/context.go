package internal

import (
	"context"
	"time"
)

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}

// Detached keeps the values of ctx (logger fields, trace id) but drops its cancellation,
// for background work that must outlive the request.
func Detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
