package kafka

import (
	"context"
	"encoding/json"

	"github.com/NordCoder/SendModes/internal/liberr"
)

// JSONHandler decodes each message value as T before calling handle.
func JSONHandler[T any](handle func(ctx context.Context, key []byte, msg T) error) Handler {
	return func(ctx context.Context, key, value []byte) error {
		var msg T
		if err := json.Unmarshal(value, &msg); err != nil {
			return liberr.InternalCause("decode kafka message", err)
		}
		return handle(ctx, key, msg)
	}
}
