package actor

import (
	"context"
	"sync"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// future is the concrete implementation of the Future interface. It wraps a
// channel that is closed exactly once, when the result becomes available.
type future[T any] struct {
	// done is closed when result has been set.
	done chan struct{}

	// mu protects result from concurrent read/write around the one-time
	// completion.
	mu sync.RWMutex

	// result holds the completed value, valid only after done is closed.
	result fn.Result[T]
}

// newFuture creates a new, incomplete future.
func newFuture[T any]() *future[T] {
	return &future[T]{
		done: make(chan struct{}),
	}
}

// Await blocks until the result is available or the context is cancelled,
// then returns it.
func (f *future[T]) Await(ctx context.Context) fn.Result[T] {
	select {
	case <-f.done:
		f.mu.RLock()
		defer f.mu.RUnlock()

		return f.result

	case <-ctx.Done():
		return fn.Err[T](ctx.Err())
	}
}

// ThenApply registers a function to transform the result of a future. The
// original future is not modified; a new instance of the future is returned.
// If the passed context is cancelled while waiting for the original future to
// complete, the new future will complete with the context's error.
func (f *future[T]) ThenApply(ctx context.Context, apply func(T) T) Future[T] {
	chained := newFuture[T]()

	go func() {
		result := f.Await(ctx)

		val, err := result.Unpack()
		if err != nil {
			chained.complete(fn.Err[T](err))
			return
		}

		chained.complete(fn.Ok(apply(val)))
	}()

	return chained
}

// OnComplete registers a function to be called when the result of the future
// is ready. If the passed context is cancelled before the future completes,
// the callback function is invoked with the context's error.
func (f *future[T]) OnComplete(ctx context.Context, cb func(fn.Result[T])) {
	go func() {
		cb(f.Await(ctx))
	}()
}

// complete sets the result of the future exactly once. Subsequent calls are
// no-ops.
func (f *future[T]) complete(result fn.Result[T]) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	select {
	case <-f.done:
		// Already completed.
		return false
	default:
		f.result = result
		close(f.done)

		return true
	}
}

// promise is the concrete implementation of the Promise interface. It wraps a
// future and allows the creator to complete it exactly once.
type promise[T any] struct {
	fut *future[T]
}

// NewPromise creates a new, uncompleted Promise and its associated Future.
func NewPromise[T any]() Promise[T] {
	return &promise[T]{
		fut: newFuture[T](),
	}
}

// Future returns the Future interface associated with this Promise.
func (p *promise[T]) Future() Future[T] {
	return p.fut
}

// Complete attempts to set the result of the future. It returns true if this
// call successfully set the result, false if the future had already been
// completed.
func (p *promise[T]) Complete(result fn.Result[T]) bool {
	return p.fut.complete(result)
}
