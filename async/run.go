package async

import (
	"context"

	"github.com/alanbriolat/youtubuddy/generic"
)

// Run will run a function in a goroutine, returning its result via a channel.
func Run[T any](f func() T) <-chan T {
	c := make(chan T, 1)
	go func() {
		c <- f()
	}()
	return c
}

// RunResult is like Run, for functions that return (T, error).
func RunResult[T any](f func() (T, error)) <-chan generic.Result[T] {
	return Run(func() generic.Result[T] {
		return generic.NewResult(f())
	})
}

// Await runs f in a goroutine and waits for it or for ctx to be done. When ctx is done first, it still waits for f to
// return, since f is expected to observe the same ctx and stop promptly.
func Await[T any](ctx context.Context, f func() (T, error)) (T, error) {
	result := RunResult(f)
	select {
	case r := <-result:
		return r.Parts()
	case <-ctx.Done():
		r := <-result
		if r.IsOk() {
			return r.Parts()
		}
		return r.Value, ctx.Err()
	}
}
