package fetch

import (
	"context"
	"sync"
)

// Future is a resolve-once asynchronous result. It settles exactly one time,
// to a value or an error, and that settlement never changes afterwards.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// NewFuture returns an unsettled future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Go runs fn in its own goroutine and settles the returned future with its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := NewFuture[T]()
	go func() {
		value, err := fn()
		f.settle(value, err)
	}()
	return f
}

// Resolve settles the future with value. It reports false if it was already settled.
func (f *Future[T]) Resolve(value T) bool {
	return f.settle(value, nil)
}

// Reject settles the future with err. It reports false if it was already settled.
func (f *Future[T]) Reject(err error) bool {
	var zero T
	return f.settle(zero, err)
}

func (f *Future[T]) settle(value T, err error) bool {
	settled := false
	f.once.Do(func() {
		f.value = value
		f.err = err
		settled = true
		close(f.done)
	})
	return settled
}

// Done is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future settles or ctx ends.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then chains fn onto f. A rejection of f skips fn and propagates unchanged.
func Then[T, U any](ctx context.Context, f *Future[T], fn func(T) (U, error)) *Future[U] {
	return Go(func() (U, error) {
		value, err := f.Await(ctx)
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(value)
	})
}
