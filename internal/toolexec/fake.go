package toolexec

import (
	"context"
	"sync"
)

// FakeRunner records invocations and answers them from a handler. It is safe
// for concurrent use by worker pools.
type FakeRunner struct {
	mu      sync.Mutex
	calls   []Command
	Handler func(cmd Command) (Result, error)
}

// Run records cmd and delegates to Handler when set.
func (f *FakeRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	f.mu.Lock()
	f.calls = append(f.calls, Command{Name: cmd.Name, Args: append([]string(nil), cmd.Args...), Dir: cmd.Dir})
	handler := f.Handler
	f.mu.Unlock()
	if handler == nil {
		return Result{}, nil
	}
	return handler(cmd)
}

// Calls returns a snapshot of recorded invocations.
func (f *FakeRunner) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Command(nil), f.calls...)
}
