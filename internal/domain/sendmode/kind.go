package sendmode

import (
	"database/sql/driver"
	"fmt"

	"github.com/NordCoder/SendModes/internal/liberr"
)

// Kind is the closed set of send mode implementations.
type Kind string

const (
	KindKraft   Kind = "KRAFT"
	KindTrademo Kind = "TRADEMO"
)

func Kinds() []Kind { return []Kind{KindKraft, KindTrademo} }

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindKraft, KindTrademo:
		return Kind(s), nil
	}
	return "", liberr.InvalidDeviceMode(s)
}

func (k Kind) Valid() bool {
	_, err := ParseKind(string(k))
	return err == nil
}

func (k Kind) String() string { return string(k) }

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, liberr.InvalidDeviceMode(string(k))
	}
	return []byte(k), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Value stores the kind as text/varchar.
func (k Kind) Value() (driver.Value, error) {
	if !k.Valid() {
		return nil, liberr.InvalidDeviceMode(string(k))
	}
	return string(k), nil
}

func (k *Kind) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return k.UnmarshalText([]byte(v))
	case []byte:
		return k.UnmarshalText(v)
	case nil:
		return liberr.InvalidDeviceMode("<null>")
	default:
		return liberr.InvalidDeviceMode(fmt.Sprintf("%T", src))
	}
}
