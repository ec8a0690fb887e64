package scripting

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// task is a unit of Lua work queued onto the script goroutine.
type task struct {
	// fn performs all Lua operations for this unit of work.
	fn func(L *lua.LState) error

	// result receives fn's outcome; closed after the send.
	result chan error
}

// Executor serializes all Lua operations through a single goroutine.
//
// The game host fires hooks from many worker goroutines, but every handler
// body must run on the one goroutine that owns the LState. The Executor is
// that goroutine's mailbox: Execute performs a synchronous rendezvous (the
// caller blocks until the work ran), ExecuteAsync queues work without
// waiting, and Relay delivers errors that must surface on the script side
// instead of at the caller.
//
// Usage:
//
//	exec := NewExecutor(L, 256)
//	go exec.Run(ctx)
//	defer exec.Close()
type Executor struct {
	L      *lua.LState
	queue  chan *task
	faults chan error
	closed atomic.Bool
	done   chan struct{}

	closeOnce sync.Once
}

// NewExecutor creates an Executor for the given Lua state.
// queueSize bounds how many operations can be buffered; <= 0 picks a default.
func NewExecutor(L *lua.LState, queueSize int) *Executor {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Executor{
		L:      L,
		queue:  make(chan *task, queueSize),
		faults: make(chan error, 64),
		done:   make(chan struct{}),
	}
}

// Run processes queued Lua work until the context is cancelled or Close is
// called. MUST be called from the goroutine that owns the Lua state.
func (e *Executor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			e.drain(ctx.Err())
			return
		case <-e.done:
			e.drain(ErrExecutorClosed)
			return
		case t := <-e.queue:
			e.complete(t, e.runTask(t))
		}
	}
}

// runTask executes one unit of work with panic recovery. A panicking Lua
// call must not take down the script goroutine; it becomes an error.
func (e *Executor) runTask(t *task) (err error) {
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
	return t.fn(e.L)
}

// complete delivers a task result without blocking the run loop.
func (e *Executor) complete(t *task, err error) {
	select {
	case t.result <- err:
	default:
	}
	close(t.result)
}

// drain fails all remaining queued work with the given error.
func (e *Executor) drain(err error) {
	for {
		select {
		case t := <-e.queue:
			e.complete(t, err)
		default:
			return
		}
	}
}

// Execute runs fn on the script goroutine and blocks until it completes.
// Safe to call from any goroutine.
func (e *Executor) Execute(fn func(L *lua.LState) error) error {
	if e.closed.Load() {
		return ErrExecutorClosed
	}

	t := &task{fn: fn, result: make(chan error, 1)}

	select {
	case <-e.done:
		return ErrExecutorClosed
	case e.queue <- t:
	}

	err, ok := <-t.result
	if !ok {
		return ErrExecutorClosed
	}
	return err
}

// ExecuteAsync queues fn without waiting for completion. Errors returned by
// fn are relayed to the fault channel rather than lost.
func (e *Executor) ExecuteAsync(fn func(L *lua.LState) error) error {
	if e.closed.Load() {
		return ErrExecutorClosed
	}

	t := &task{fn: fn, result: make(chan error, 1)}

	select {
	case <-e.done:
		return ErrExecutorClosed
	case e.queue <- t:
		go func() {
			if err, ok := <-t.result; ok && err != nil && !errors.Is(err, ErrExecutorClosed) {
				e.Relay(err)
			}
		}()
		return nil
	default:
		return ErrQueueFull
	}
}

// Relay forwards an error to be surfaced on the script side. It never
// blocks; if the fault buffer is full the error is dropped.
func (e *Executor) Relay(err error) {
	if err == nil {
		return
	}
	select {
	case e.faults <- err:
	default:
	}
}

// Faults returns the channel of relayed script-side errors. The host is
// expected to drain it (typically into its logger).
func (e *Executor) Faults() <-chan error {
	return e.faults
}

// Close stops the executor and prevents new operations. In-flight work
// completes with ErrExecutorClosed.
func (e *Executor) Close() {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		close(e.done)
	})
}

// IsClosed reports whether the executor has been closed.
func (e *Executor) IsClosed() bool {
	return e.closed.Load()
}
