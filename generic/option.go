package generic

import "fmt"

// Option is a value that may or may not be present.
type Option[T any] struct {
	Value    T
	hasValue bool
}

// Some constructs an Option[T] that has a value.
func Some[T any](value T) Option[T] {
	return Option[T]{Value: value, hasValue: true}
}

// None constructs an Option[T] that does not have a value.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Expect returns the contained value, or panics with the supplied error message if there is no value.
func (o Option[T]) Expect(msg string) T {
	if o.hasValue {
		return o.Value
	} else {
		panic(msg)
	}
}

// Get returns the contained value and whether there was one, like a map lookup.
func (o Option[T]) Get() (T, bool) {
	return o.Value, o.hasValue
}

func (o Option[T]) IsNone() bool {
	return !o.hasValue
}

func (o Option[T]) IsSome() bool {
	return o.hasValue
}

// Unwrap returns the contained value, or panics if there is no value.
func (o Option[T]) Unwrap() T {
	return o.Expect("tried to Unwrap() a None")
}

// UnwrapOr returns the contained value, or other if there is no value.
func (o Option[T]) UnwrapOr(other T) T {
	if o.hasValue {
		return o.Value
	} else {
		return other
	}
}

// UnwrapOrElse returns the contained value, or the result of the callback if there is no value.
func (o Option[T]) UnwrapOrElse(f func() T) T {
	if o.hasValue {
		return o.Value
	} else {
		return f()
	}
}

func (o Option[T]) String() string {
	if o.hasValue {
		return fmt.Sprintf("Some(%v)", o.Value)
	} else {
		return "None"
	}
}
