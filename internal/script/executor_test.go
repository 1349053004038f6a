package script

import (
	"context"
	"errors"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestExecutorRunsQueuedCalls(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	exec := NewExecutor(L, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		exec.Run(ctx)
		close(done)
	}()

	var ran bool
	err := exec.Execute(context.Background(), func(L *lua.LState) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("Execute error = %v", err)
	}
	if !ran {
		t.Error("queued function did not run")
	}

	exec.Close()
	<-done
}

func TestExecutorClosePreventsNewCalls(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	exec := NewExecutor(L, 4)
	exec.Close()

	err := exec.Execute(context.Background(), func(L *lua.LState) error { return nil })
	if !errors.Is(err, ErrExecutorClosed) {
		t.Errorf("Execute after Close error = %v, want ErrExecutorClosed", err)
	}
	if !exec.IsClosed() {
		t.Error("IsClosed() should be true after Close")
	}
}

func TestExecutorPropagatesCallError(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	exec := NewExecutor(L, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go exec.Run(ctx)
	defer exec.Close()

	wantErr := errors.New("boom")
	err := exec.Execute(context.Background(), func(L *lua.LState) error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("Execute error = %v, want %v", err, wantErr)
	}
}
