package service

import (
	"context"
	"sync"
)

// Future resolves once a background worker finishes a keyed operation.
// The submitting goroutine must never wait on it synchronously from the
// game loop; Done is for workers, shutdown paths, and tests.
type Future struct {
	once sync.Once
	done chan struct{}
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) complete(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done is closed when the operation has finished.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Err returns the operation's result. Only valid after Done is closed.
func (f *Future) Err() error {
	return f.err
}

// Wait blocks until the operation finishes or ctx expires.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
