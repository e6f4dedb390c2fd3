package codec

import (
	"fmt"
	"math"
	"time"

	"github.com/NordCoder/SendModes/internal/liberr"
)

// column readers for Row values as pgx.RowToMap returns them.

func colString(r Row, name string) (string, error) {
	v, ok := r[name]
	if !ok {
		return "", liberr.Internal("row: missing column %q", name)
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", liberr.Internal("row: column %q has type %T, want text", name, v)
	}
}

func colNullString(r Row, name string) (*string, error) {
	if v, ok := r[name]; ok && v == nil {
		return nil, nil
	}
	s, err := colString(r, name)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func colBool(r Row, name string) (bool, error) {
	v, ok := r[name]
	if !ok {
		return false, liberr.Internal("row: missing column %q", name)
	}
	b, ok := v.(bool)
	if !ok {
		return false, liberr.Internal("row: column %q has type %T, want bool", name, v)
	}
	return b, nil
}

func colNullInt32(r Row, name string) (*int32, error) {
	v, ok := r[name]
	if !ok {
		return nil, liberr.Internal("row: missing column %q", name)
	}
	var n int32
	switch x := v.(type) {
	case nil:
		return nil, nil
	case int32:
		n = x
	case int64:
		if x < math.MinInt32 || x > math.MaxInt32 {
			return nil, liberr.Internal("row: column %q out of int32 range: %d", name, x)
		}
		n = int32(x)
	case int16:
		n = int32(x)
	case int:
		if x < math.MinInt32 || x > math.MaxInt32 {
			return nil, liberr.Internal("row: column %q out of int32 range: %d", name, x)
		}
		n = int32(x)
	default:
		return nil, liberr.Internal("row: column %q has type %T, want integer", name, v)
	}
	return &n, nil
}

func colTime(r Row, name string) (time.Time, error) {
	v, ok := r[name]
	if !ok {
		return time.Time{}, liberr.Internal("row: missing column %q", name)
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, liberr.Internal("row: column %q has type %T, want timestamp", name, v)
	}
	return t.UTC(), nil
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func rowErr(entity string, err error) error {
	return fmt.Errorf("%s row: %w", entity, err)
}
