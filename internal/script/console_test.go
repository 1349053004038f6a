package script

import (
	"testing"

	"github.com/dshills/notebookconcat/internal/concat"
)

func TestConsoleOpenAndClose(t *testing.T) {
	engine := concat.NewEngine(concat.DefaultConfig())
	console, err := NewConsole(engine)
	if err != nil {
		t.Fatalf("NewConsole error = %v", err)
	}
	defer console.Close()

	script := `
		_, accepted = open("file:///nb/one.ipynb#W0", "print(1)\n", 1, false)
		assert(accepted, "open should be accepted")
	`
	if err := console.DoString(script); err != nil {
		t.Fatalf("DoString(open) error = %v", err)
	}

	if got := engine.Document().Cells(); len(got) != 1 {
		t.Fatalf("Cells() = %v, want one cell opened via the console", got)
	}

	closeScript := `
		_, accepted = close("file:///nb/one.ipynb#W0")
		assert(accepted, "close should be accepted")
	`
	if err := console.DoString(closeScript); err != nil {
		t.Fatalf("DoString(close) error = %v", err)
	}
	if !engine.Closed() {
		t.Error("engine should be closed after the console closes the only cell")
	}
}

func TestConsoleEdit(t *testing.T) {
	engine := concat.NewEngine(concat.DefaultConfig())
	console, err := NewConsole(engine)
	if err != nil {
		t.Fatalf("NewConsole error = %v", err)
	}
	defer console.Close()

	setup := `
		open("file:///nb/two.ipynb#W0", "x = 1\n", 1, false)
		_, accepted = edit("file:///nb/two.ipynb#W0", {
			{range = {start_line=0, start_char=0, end_line=0, end_char=5}, text = "x = 2"},
		})
		assert(accepted, "edit should be accepted")
	`
	if err := console.DoString(setup); err != nil {
		t.Fatalf("DoString(edit) error = %v", err)
	}

	if got := engine.Document().GetRealText(); got != "x = 2\n" {
		t.Errorf("GetRealText() = %q, want %q", got, "x = 2\n")
	}
}

func TestConsoleRefresh(t *testing.T) {
	engine := concat.NewEngine(concat.DefaultConfig())
	console, err := NewConsole(engine)
	if err != nil {
		t.Fatalf("NewConsole error = %v", err)
	}
	defer console.Close()

	script := `
		open("file:///nb/three.ipynb#W0", "a = 1\n", 1, true)
		_, accepted = refresh({
			{uri = "file:///nb/three.ipynb#W0", text = "a = 2\n", version = 2},
		})
		assert(accepted, "refresh should be accepted")
	`
	if err := console.DoString(script); err != nil {
		t.Fatalf("DoString(refresh) error = %v", err)
	}

	if got := engine.Document().GetRealText(); got != "a = 2\n" {
		t.Errorf("GetRealText() = %q, want %q", got, "a = 2\n")
	}
}

func TestConsoleRejectsUnsafeModules(t *testing.T) {
	engine := concat.NewEngine(concat.DefaultConfig())
	console, err := NewConsole(engine)
	if err != nil {
		t.Fatalf("NewConsole error = %v", err)
	}
	defer console.Close()

	if err := console.DoString(`require("os")`); err == nil {
		t.Error("requiring 'os' without the unsafe capability should fail")
	}
	if err := console.DoString(`dofile("whatever.lua")`); err == nil {
		t.Error("dofile should be disabled by the sandbox")
	}
}
