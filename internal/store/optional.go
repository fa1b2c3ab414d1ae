package store

import (
	"bytes"
	"encoding/json"
	"time"
)

// Optional is one field of a partial input. It tells an absent key (Set is
// false) from an explicit null (Null is true) and from a value.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	var zero T

	o.Set = true
	o.Value = zero

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}

	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// Present reports whether the field carries a value.
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}

// Ptr returns a copy of the value, or nil when the field is absent or null.
func (o Optional[T]) Ptr() *T {
	if !o.Present() {
		return nil
	}

	v := o.Value
	return &v
}

// ValidationValue is what request validation sees: the value, or nil when
// there is none.
func (o Optional[T]) ValidationValue() any {
	if !o.Present() {
		return nil
	}

	return o.Value
}

// notNull rejects an explicit null on a column that cannot hold one.
func notNull(nulls ...bool) error {
	for _, null := range nulls {
		if null {
			return fail(ErrInvalid, "Bad request")
		}
	}

	return nil
}

// dateColumn is the value an update writes for a nullable date.
func dateColumn(o Optional[DateTime]) any {
	if o.Null {
		return nil
	}

	return o.Value.Time
}

// datePtr is the create counterpart of dateColumn. Absent dates fall back
// to now.
func datePtr(o Optional[DateTime], now time.Time) *time.Time {
	switch {
	case o.Null:
		return nil
	case o.Set:
		t := o.Value.Time
		return &t
	default:
		return &now
	}
}
