package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultDBAttempts = 3
	DefaultDBInterval = 100 * time.Millisecond
)

// DefaultDBPolicy retries queries that failed for retryable reasons at a fixed
// interval. Everything else fails on the first attempt.
func DefaultDBPolicy(log *zap.Logger, retryable func(error) bool) Policy {
	return Policy{
		Name:      "postgres",
		Attempts:  DefaultDBAttempts,
		Backoff:   Fixed{Interval: DefaultDBInterval},
		Retryable: retryable,
		OnAttempt: func(i int, err error) {
			if log != nil && retryable(err) {
				log.Warn("query failed; retrying", zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && !errors.Is(err, context.Canceled) {
				log.Error("query retries exhausted", zap.Error(err))
			}
		},
	}
}
