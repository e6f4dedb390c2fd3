package codec

import (
	"errors"
	"fmt"

	"github.com/NordCoder/SendModes/internal/liberr"
)

// ErrValueType is returned when a cache reply is not a bulk payload holding the
// expected document.
var ErrValueType = errors.New("cache value type error")

type cacheCodec[E any] struct {
	doc Codec[[]byte, E]
}

// Cache stores an entity as one JSON document in a single bulk value. Encode
// always yields []byte; Decode accepts []byte or string, the two shapes a bulk
// reply takes in go-redis.
func Cache[E any](doc Codec[[]byte, E]) Codec[any, E] {
	return cacheCodec[E]{doc: doc}
}

func (c cacheCodec[E]) Encode(v E) (any, error) {
	b, err := c.doc.Encode(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (c cacheCodec[E]) Decode(v any) (E, error) {
	var zero E
	var payload []byte
	switch x := v.(type) {
	case []byte:
		payload = x
	case string:
		payload = []byte(x)
	default:
		return zero, fmt.Errorf("%w: %w: unexpected reply %T", liberr.ErrInternal, ErrValueType, v)
	}
	out, err := c.doc.Decode(payload)
	switch {
	case err == nil:
	case errors.Is(err, liberr.ErrInternal):
		return zero, fmt.Errorf("%w: %w", ErrValueType, err)
	default:
		return zero, fmt.Errorf("%w: %w: %w", liberr.ErrInternal, ErrValueType, err)
	}
	return out, nil
}
