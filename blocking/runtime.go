// Package blocking exposes the anchor client as a synchronous API. Every
// call dispatches the async implementation onto a runtime privately owned
// by the Program and blocks the calling thread until completion; no logic
// is duplicated between the two surfaces.
package blocking

import (
	"context"
	"errors"
)

// ErrRuntimeClosed is returned by calls issued after the program's
// runtime was shut down.
var ErrRuntimeClosed = errors.New("blocking: runtime closed")

// runtime is the private execution context of one blocking Program. Its
// root context parents every dispatched call and background subscription
// task; closing it aborts whatever is still running.
type runtime struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func newRuntime() *runtime {
	ctx, cancel := context.WithCancel(context.Background())
	return &runtime{ctx: ctx, cancel: cancel}
}

func (rt *runtime) close() {
	rt.cancel()
}

// run dispatches fn onto the runtime and blocks until it completes.
// Concurrent callers are permitted; each dispatch runs on its own
// goroutine under the shared root context.
func run[T any](rt *runtime, fn func(ctx context.Context) (T, error)) (T, error) {
	if err := rt.ctx.Err(); err != nil {
		var zero T
		return zero, ErrRuntimeClosed
	}

	type result struct {
		value T
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		value, err := fn(rt.ctx)
		ch <- result{value: value, err: err}
	}()

	res := <-ch
	return res.value, res.err
}
