package script

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// ErrExecutorClosed is returned when attempting to use a closed executor.
var ErrExecutorClosed = errors.New("lua executor is closed")

// LuaCall represents a Lua operation to be executed.
type LuaCall struct {
	Fn     func(L *lua.LState) error
	Result chan error
}

// Executor serializes Lua operations onto a single goroutine.
//
// gopher-lua's LState is not goroutine-safe. A host that calls into a
// Console's Lua state from more than one goroutine (e.g. a UI goroutine
// issuing edits while an event listener also touches the state) needs this
// to marshal calls onto the goroutine that actually owns the LState.
type Executor struct {
	L     *lua.LState
	queue chan *LuaCall

	closed atomic.Bool
	done   chan struct{}

	closeOnce sync.Once
}

// NewExecutor creates a new Executor for the given Lua state.
func NewExecutor(L *lua.LState, queueSize int) *Executor {
	if queueSize <= 0 {
		queueSize = 100
	}
	return &Executor{
		L:     L,
		queue: make(chan *LuaCall, queueSize),
		done:  make(chan struct{}),
	}
}

// Run processes queued Lua operations until ctx is cancelled or Close is
// called. Must run on the goroutine that owns the Lua state.
func (e *Executor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			e.drainQueue(ctx.Err())
			return
		case <-e.done:
			e.drainQueue(ErrExecutorClosed)
			return
		case call, ok := <-e.queue:
			if !ok {
				return
			}
			err := e.executeCall(call)
			select {
			case call.Result <- err:
			default:
			}
			close(call.Result)
		}
	}
}

func (e *Executor) executeCall(call *LuaCall) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case error:
				err = v
			case string:
				err = errors.New(v)
			default:
				err = errors.New("lua panic")
			}
		}
	}()
	return call.Fn(e.L)
}

func (e *Executor) drainQueue(err error) {
	for {
		select {
		case call, ok := <-e.queue:
			if !ok {
				return
			}
			select {
			case call.Result <- err:
			default:
			}
			close(call.Result)
		default:
			return
		}
	}
}

// Execute queues a Lua operation and blocks until it completes.
func (e *Executor) Execute(ctx context.Context, fn func(L *lua.LState) error) error {
	if e.closed.Load() {
		return ErrExecutorClosed
	}

	call := &LuaCall{Fn: fn, Result: make(chan error, 1)}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return ErrExecutorClosed
	case e.queue <- call:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err, ok := <-call.Result:
		if !ok {
			return ErrExecutorClosed
		}
		return err
	}
}

// Close stops the executor. In-flight operations complete with
// ErrExecutorClosed.
func (e *Executor) Close() {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		close(e.done)
	})
}

// IsClosed returns true if the executor has been closed.
func (e *Executor) IsClosed() bool {
	return e.closed.Load()
}
