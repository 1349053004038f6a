// Package script embeds a sandboxed Lua console over the concat engine, for
// scripted test-scenario authoring and for driving the inspector demo mode.
package script

import (
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// Default limits for Lua state.
const (
	DefaultMemoryLimit      = 10 * 1024 * 1024 // advisory, not enforced by gopher-lua
	DefaultExecutionTimeout = 5 * time.Second
	DefaultInstructionLimit = 10_000_000
)

// State wraps gopher-lua with sandboxing and panic recovery.
//
// gopher-lua's LState is not goroutine-safe; the mutex here only protects
// against concurrent Go-side access. Lua code itself always runs on
// whichever goroutine calls in.
type State struct {
	L *lua.LState

	mu sync.Mutex

	memoryLimit      int64
	executionTimeout time.Duration
	instructionLimit int64

	sandbox *Sandbox
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithMemoryLimit sets the advisory memory limit for the Lua state.
func WithMemoryLimit(bytes int64) StateOption {
	return func(s *State) { s.memoryLimit = bytes }
}

// WithExecutionTimeout records an execution timeout on the State. DoString,
// DoFile and Call do not apply it: Lua calls run until they finish.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) { s.executionTimeout = d }
}

// WithInstructionLimit sets the limit the sandbox's IncrementInstructions
// compares against. Lua execution itself does not count instructions, so
// the limit is not enforced on running scripts.
func WithInstructionLimit(limit int64) StateOption {
	return func(s *State) { s.instructionLimit = limit }
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) (*State, error) {
	state := &State{
		memoryLimit:      DefaultMemoryLimit,
		executionTimeout: DefaultExecutionTimeout,
		instructionLimit: DefaultInstructionLimit,
	}
	for _, opt := range opts {
		opt(state)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	state.L = L

	openSafeLibraries(L)

	state.sandbox = NewSandbox(L, state.instructionLimit)
	state.sandbox.Install()

	return state, nil
}

func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	// Intentionally not opened: io, os, debug, package.
}

// DoFile executes a Lua file synchronously.
func (s *State) DoFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	s.sandbox.ResetInstructionCount()
	return s.doWithRecovery(func() error { return s.L.DoFile(path) })
}

// DoString executes a Lua string synchronously.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	s.sandbox.ResetInstructionCount()
	return s.doWithRecovery(func() error { return s.L.DoString(code) })
}

func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Call calls a global Lua function with the given arguments.
func (s *State) Call(fn string, args ...lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	s.sandbox.ResetInstructionCount()

	fnVal := s.L.GetGlobal(fn)
	if fnVal == lua.LNil {
		return nil, fmt.Errorf("function %q not found", fn)
	}
	if fnVal.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%q is not a function (got %s)", fn, fnVal.Type())
	}

	stackTop := s.L.GetTop()
	s.L.Push(fnVal)
	for _, arg := range args {
		s.L.Push(arg)
	}

	var callErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				callErr = fmt.Errorf("lua panic: %v", r)
			}
		}()
		callErr = s.L.PCall(len(args), lua.MultRet, nil)
	}()
	if callErr != nil {
		return nil, callErr
	}

	nRet := s.L.GetTop() - stackTop
	if nRet <= 0 {
		return []lua.LValue{}, nil
	}
	results := make([]lua.LValue, nRet)
	for i := 0; i < nRet; i++ {
		results[i] = s.L.Get(stackTop + i + 1)
	}
	s.L.Pop(nRet)

	return results, nil
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// SetGlobal sets a global variable.
func (s *State) SetGlobal(name string, value lua.LValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.L.SetGlobal(name, value)
}

// RegisterFunc registers a Go function as a global Lua function.
func (s *State) RegisterFunc(name string, fn lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.L.SetGlobal(name, s.L.NewFunction(fn))
}

// LuaState returns the underlying gopher-lua state. Direct access bypasses
// the mutex and sandbox; callers own thread-safety from here on.
func (s *State) LuaState() *lua.LState {
	return s.L
}

// Sandbox returns the sandbox for capability management.
func (s *State) Sandbox() *Sandbox {
	return s.sandbox
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases all resources associated with the Lua state.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
