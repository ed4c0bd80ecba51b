package generic

import "fmt"

// Result pairs a value with the error that may have prevented it, so both can travel over one channel.
type Result[T any] struct {
	Value T
	Error error
}

// NewResult wraps a (T, error) return value from another function call as a Result[T].
func NewResult[T any](value T, err error) Result[T] {
	return Result[T]{Value: value, Error: err}
}

func (r Result[T]) IsOk() bool {
	return r.Error == nil
}

// Parts splits the Result[T] back into a (T, error) pair.
func (r Result[T]) Parts() (T, error) {
	return r.Value, r.Error
}

// Expect returns the contained value if IsOk(), or panics with the supplied message and the contained error.
func (r Result[T]) Expect(msg string) T {
	if r.IsOk() {
		return r.Value
	} else {
		panic(fmt.Errorf("%s: %w", msg, r.Error))
	}
}

// Unwrap is a shortcut for NewResult(...).Expect(...) with a generic message.
func Unwrap[T any](value T, err error) T {
	return NewResult(value, err).Expect("tried to Unwrap() an Err")
}

// Unwrap_ is like Unwrap, but for return values that are just an error.
func Unwrap_(err error) {
	NewResult(NewVoid(), err).Expect("tried to Unwrap() an Err")
}
