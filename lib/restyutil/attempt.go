package restyutil

import "context"

type attemptKeyType int

var attemptKey attemptKeyType

// WithAttempt marks requests sent with ctx as the given 1-based attempt, so
// retried requests can be told apart in dumps and spans.
func WithAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, attemptKey, attempt)
}

func AttemptFrom(ctx context.Context) (int, bool) {
	attempt, ok := ctx.Value(attemptKey).(int)
	return attempt, ok
}
