package retry

import (
	"time"

	"github.com/NordCoder/SendModes/internal/liberr"
	"go.uber.org/zap"
)

const (
	DefaultHTTPAttempts = 5
	DefaultHTTPInterval = 100 * time.Millisecond
)

// DefaultHTTPPolicy retries transient transport failures (timeouts, send errors)
// at a fixed interval.
func DefaultHTTPPolicy(log *zap.Logger) Policy {
	return Policy{
		Name:      "http",
		Attempts:  DefaultHTTPAttempts,
		Backoff:   Fixed{Interval: DefaultHTTPInterval},
		Retryable: liberr.IsTransient,
		OnAttempt: func(i int, err error) {
			if log != nil && liberr.IsTransient(err) {
				log.Warn("request send failed; retrying", zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil {
				log.Error("request retries exhausted", zap.Error(err))
			}
		},
	}
}
