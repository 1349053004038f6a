package script

import (
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// Sandbox restricts Lua execution to safe operations. The console only ever
// needs to call into an engine's Open/Close/Edit/Refresh, so the sandbox
// here is narrower than a general-purpose plugin host's: the only
// capabilities are filesystem.read and unsafe, and granting unsafe opens
// the io, os and debug libraries in full, file writes and shell commands
// included.
type Sandbox struct {
	L *lua.LState

	instructionLimit int64
	instructionCount int64

	capabilities map[Capability]bool
}

// Capability represents a permission that can be granted to a script.
type Capability string

// Available capabilities.
const (
	CapabilityFileRead Capability = "filesystem.read"
	CapabilityUnsafe   Capability = "unsafe" // full Lua stdlib access
)

// NewSandbox creates a new sandbox for the Lua state.
func NewSandbox(L *lua.LState, instructionLimit int64) *Sandbox {
	return &Sandbox{
		L:                L,
		instructionLimit: instructionLimit,
		capabilities:     make(map[Capability]bool),
	}
}

// Install sets up the sandbox restrictions.
func (s *Sandbox) Install() {
	dangerousFuncs := []string{"dofile", "loadfile", "load", "loadstring"}
	for _, name := range dangerousFuncs {
		s.L.SetGlobal(name, lua.LNil)
	}

	s.installSafeRequire()
}

// installSafeRequire replaces require with a version that only allows safe
// modules. Clears package.path/cpath to prevent loading modules from disk.
func (s *Sandbox) installSafeRequire() {
	pkg := s.L.GetGlobal("package")
	if pkg != lua.LNil {
		if pkgTable, ok := pkg.(*lua.LTable); ok {
			s.L.SetField(pkgTable, "path", lua.LString(""))
			s.L.SetField(pkgTable, "cpath", lua.LString(""))

			safeLoaded := map[string]bool{
				"_G": true, "string": true, "table": true, "math": true,
				"bit32": true, "utf8": true, "package": true,
			}
			loaded := s.L.GetField(pkgTable, "loaded")
			if loadedTbl, ok := loaded.(*lua.LTable); ok {
				var keysToRemove []string
				loadedTbl.ForEach(func(k, _ lua.LValue) {
					if ks, ok := k.(lua.LString); ok {
						if !safeLoaded[string(ks)] {
							keysToRemove = append(keysToRemove, string(ks))
						}
					}
				})
				for _, key := range keysToRemove {
					loadedTbl.RawSetString(key, lua.LNil)
				}
			}
		}
	}

	safeModules := map[string]bool{
		"string": true, "table": true, "math": true, "bit32": true, "utf8": true,
	}

	originalRequire := s.L.GetGlobal("require")

	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		modName := L.CheckString(1)

		if safeModules[modName] {
			L.Push(originalRequire)
			L.Push(lua.LString(modName))
			L.Call(1, 1)
			return 1
		}

		// Allow notebookconcat.* modules the host preloads via L.PreloadModule.
		if len(modName) > len("notebookconcat.") && modName[:len("notebookconcat.")] == "notebookconcat." {
			L.Push(originalRequire)
			L.Push(lua.LString(modName))
			L.Call(1, 1)
			return 1
		}

		switch modName {
		case "io":
			if !s.capabilities[CapabilityFileRead] {
				L.RaiseError("module 'io' requires filesystem.read capability")
			}
			L.Push(originalRequire)
			L.Push(lua.LString(modName))
			L.Call(1, 1)
			return 1
		case "debug":
			if !s.capabilities[CapabilityUnsafe] {
				L.RaiseError("module 'debug' requires unsafe capability")
			}
			L.Push(originalRequire)
			L.Push(lua.LString(modName))
			L.Call(1, 1)
			return 1
		}

		L.RaiseError("module %q is not available", modName)
		return 0
	}))
}

// ResetInstructionCount resets the instruction counter.
func (s *Sandbox) ResetInstructionCount() {
	atomic.StoreInt64(&s.instructionCount, 0)
}

// InstructionCount returns the current instruction count.
func (s *Sandbox) InstructionCount() int64 {
	return atomic.LoadInt64(&s.instructionCount)
}

// IncrementInstructions adds to the instruction count and returns true if
// the limit has been exceeded.
func (s *Sandbox) IncrementInstructions(n int64) bool {
	if s.instructionLimit <= 0 {
		return false
	}
	count := atomic.AddInt64(&s.instructionCount, n)
	return count > s.instructionLimit
}

// Grant enables a capability.
func (s *Sandbox) Grant(cap Capability) {
	s.capabilities[cap] = true
	if cap == CapabilityUnsafe {
		s.injectUnsafeLibraries()
	}
}

// HasCapability returns true if the capability is granted.
func (s *Sandbox) HasCapability(cap Capability) bool {
	return s.capabilities[cap]
}

// injectUnsafeLibraries opens the remaining standard Lua libraries. It runs
// only when CapabilityUnsafe is granted.
func (s *Sandbox) injectUnsafeLibraries() {
	lua.OpenIo(s.L)
	lua.OpenOs(s.L)
	lua.OpenDebug(s.L)
}

// CheckCapability returns an error if the capability is not granted.
func (s *Sandbox) CheckCapability(cap Capability) error {
	if !s.capabilities[cap] {
		return &CapabilityError{Capability: cap}
	}
	return nil
}

// CapabilityError is returned when a capability is not granted.
type CapabilityError struct {
	Capability Capability
}

func (e *CapabilityError) Error() string {
	return "capability not granted: " + string(e.Capability)
}
