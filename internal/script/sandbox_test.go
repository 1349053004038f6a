package script

import "testing"

func TestSandboxGrantAndHasCapability(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState error = %v", err)
	}
	defer state.Close()

	sb := state.Sandbox()
	if sb.HasCapability(CapabilityFileRead) {
		t.Error("CapabilityFileRead should not be granted by default")
	}
	sb.Grant(CapabilityFileRead)
	if !sb.HasCapability(CapabilityFileRead) {
		t.Error("CapabilityFileRead should be granted after Grant")
	}
}

func TestSandboxCheckCapability(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState error = %v", err)
	}
	defer state.Close()

	sb := state.Sandbox()
	if err := sb.CheckCapability(CapabilityUnsafe); err == nil {
		t.Error("CheckCapability(unsafe) should fail before it is granted")
	}
	sb.Grant(CapabilityUnsafe)
	if err := sb.CheckCapability(CapabilityUnsafe); err != nil {
		t.Errorf("CheckCapability(unsafe) = %v, want nil after Grant", err)
	}
}

func TestSandboxUnsafeGrantOpensStdlib(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState error = %v", err)
	}
	defer state.Close()

	if err := state.DoString(`os.time()`); err == nil {
		t.Fatal("os should be unavailable before the unsafe capability is granted")
	}

	state.Sandbox().Grant(CapabilityUnsafe)

	if err := state.DoString(`os.time()`); err != nil {
		t.Errorf("os.time() error = %v, want nil after granting unsafe", err)
	}
}

func TestSandboxInstructionCounting(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState error = %v", err)
	}
	defer state.Close()

	sb := state.Sandbox()
	sb.ResetInstructionCount()
	if sb.InstructionCount() != 0 {
		t.Errorf("InstructionCount() = %d, want 0 after reset", sb.InstructionCount())
	}
	if exceeded := sb.IncrementInstructions(5); exceeded {
		t.Error("IncrementInstructions(5) should not exceed the default limit")
	}
	if sb.InstructionCount() != 5 {
		t.Errorf("InstructionCount() = %d, want 5", sb.InstructionCount())
	}
}
