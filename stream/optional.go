package stream

import (
	"fmt"

	"github.com/kbukum/seqkit/errors"
)

// Optional holds the result of a terminal that may find nothing, such as
// FindFirst, Min or Average. An absent Optional is a normal result, not an error.
type Optional[T any] struct {
	value   T
	present bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// IsPresent reports whether a value is held.
func (o Optional[T]) IsPresent() bool { return o.present }

// Get returns the value, or an EMPTY_RESULT error when absent.
func (o Optional[T]) Get() (T, error) {
	if !o.present {
		var zero T
		return zero, errors.EmptyResult("get")
	}
	return o.value, nil
}

// OrElse returns the value if present, otherwise fallback.
func (o Optional[T]) OrElse(fallback T) T {
	if o.present {
		return o.value
	}
	return fallback
}

// IfPresent calls fn with the value if one is held.
func (o Optional[T]) IfPresent(fn func(T)) {
	if o.present {
		fn(o.value)
	}
}

func (o Optional[T]) String() string {
	if !o.present {
		return "Optional.empty"
	}
	return fmt.Sprintf("Optional[%v]", o.value)
}
