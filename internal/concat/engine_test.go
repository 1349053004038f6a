package concat

import "testing"

func cellURI(path, fragment string) DocumentURI {
	return FilePathToURI(path) + DocumentURI("#"+fragment)
}

func TestEngineOpenOneCell(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cell := cellURI("/nb/one.ipynb", "W0")

	ev, ok := e.Open(cell, "print(1)\n", 1, false)
	if !ok {
		t.Fatal("Open returned ok=false")
	}

	wantText := "import IPython\nIPython.get_ipython()\nprint(1)\n"
	if len(ev.ContentChanges) != 1 || ev.ContentChanges[0].Text != wantText {
		t.Fatalf("outbound change text = %q, want %q", ev.ContentChanges[0].Text, wantText)
	}
	if ev.ContentChanges[0].Range.Start != (Position{}) || ev.ContentChanges[0].Range.End != (Position{}) {
		t.Errorf("outbound change range = %+v, want a zero-width insertion at (0,0)", ev.ContentChanges[0].Range)
	}

	doc := e.Document()
	if got, _ := doc.GetText(nil); got != wantText {
		t.Errorf("GetText() = %q, want %q", got, wantText)
	}
	if l, ok := doc.LineAt(2); !ok || l.Text != "print(1)" {
		t.Errorf("LineAt(2) = %+v, ok %v, want text %q", l, ok, "print(1)")
	}
	// The trailing "\n" after "print(1)" produces one more, empty, final
	// line (see DESIGN.md's line_count interpretation decision).
	if l, ok := doc.LineAt(3); !ok || l.Text != "" {
		t.Errorf("LineAt(3) = %+v, ok %v, want an empty trailing line", l, ok)
	}
	if _, ok := doc.LineAt(4); ok {
		t.Error("LineAt(4) should not exist")
	}
}

func TestEngineOpenTriggerLineSuppression(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cell := cellURI("/nb/two.ipynb", "W0")

	if _, ok := e.Open(cell, "!pip install x\nprint(1)\n", 1, false); !ok {
		t.Fatal("Open returned ok=false")
	}

	doc := e.Document()
	if got := doc.GetRealText(); got != "!pip install x\nprint(1)\n" {
		t.Errorf("GetRealText() = %q, want the original text unchanged", got)
	}

	rng, ok := doc.ConcatRangeOf(cell)
	if !ok {
		t.Fatal("ConcatRangeOf returned ok=false")
	}
	// The header prelude is owned by this cell too (it is the document's
	// first cell), so the range starts at line 0 and runs line-break
	// inclusive past "print(1)".
	if rng.Start.Line != 0 || rng.End.Line != 4 {
		t.Errorf("ConcatRangeOf = %+v, want start line 0, end line 4", rng)
	}
}

func TestEngineEditPartialReplacement(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cell := cellURI("/nb/three.ipynb", "W0")
	e.Open(cell, "!pip install x\nprint(1)\n", 1, false)

	end := Position{Line: 0, Character: 14}
	ev, ok := e.Edit(cell, []ContentChange{{
		Range: &Range{Start: Position{Line: 0, Character: 0}, End: end},
		Text:  "!pip install y",
	}})
	if !ok {
		t.Fatal("Edit returned ok=false")
	}
	if len(ev.ContentChanges) != 1 {
		t.Fatalf("len(ContentChanges) = %d, want 1", len(ev.ContentChanges))
	}
	if ev.ContentChanges[0].Text != "!pip install y" {
		t.Errorf("outbound change text = %q, want %q", ev.ContentChanges[0].Text, "!pip install y")
	}

	doc := e.Document()
	want := "!pip install y\nprint(1)\n"
	if got := doc.GetRealText(); got != want {
		t.Errorf("GetRealText() = %q, want %q", got, want)
	}
}

func TestEngineEditWholeCellReplacement(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cell := cellURI("/nb/four.ipynb", "W0")
	e.Open(cell, "!pip install x\nprint(1)\n", 1, false)

	oldVersion := e.Version()
	end := Position{Line: 0, Character: 14}
	ev, ok := e.Edit(cell, []ContentChange{{
		Range: &Range{Start: Position{Line: 0, Character: 0}, End: end},
		Text:  "print(2)",
	}})
	if !ok {
		t.Fatal("Edit returned ok=false")
	}
	if e.Version() <= oldVersion {
		t.Error("version should strictly increase")
	}
	if len(ev.ContentChanges) != 1 {
		t.Fatalf("len(ContentChanges) = %d, want 1", len(ev.ContentChanges))
	}
	// The trigger line is gone, so the whole cell is replaced rather than
	// a partial splice: the outbound text is the cell's full new concat
	// text, not just the replacement fragment.
	if ev.ContentChanges[0].Text == "print(2)" {
		t.Error("expected a whole-cell replacement, got the raw replacement fragment (partial-edit path)")
	}

	doc := e.Document()
	if got := doc.GetRealText(); got != "print(2)\nprint(1)\n" {
		t.Errorf("GetRealText() = %q, want %q", got, "print(2)\nprint(1)\n")
	}
}

func TestEngineCloseOnlyCell(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cell := cellURI("/nb/five.ipynb", "W0")
	e.Open(cell, "print(1)\n", 1, false)

	ev, ok := e.Close(cell)
	if !ok {
		t.Fatal("Close returned ok=false")
	}
	if len(ev.ContentChanges) != 1 || ev.ContentChanges[0].Text != "" {
		t.Errorf("close event = %+v, want a single deletion with empty replacement text", ev.ContentChanges)
	}
	if !e.Closed() {
		t.Error("Closed() = false, want true after closing the only cell")
	}

	doc := e.Document()
	if len(doc.Cells()) != 0 {
		t.Errorf("Cells() = %v, want empty after close", doc.Cells())
	}
	if _, ok := doc.LineAt(0); ok {
		t.Error("LineAt(0) should not exist: line_count == 0")
	}
}

func TestEngineRefreshReordersCells(t *testing.T) {
	e := NewEngine(DefaultConfig())
	w1 := cellURI("/nb/six.ipynb", "W1")
	w0 := cellURI("/nb/six.ipynb", "W0")

	e.Open(w1, "b = 2\n", 1, true)
	e.Open(w0, "a = 1\n", 1, true)

	beforeVersion := e.Version()

	ev, ok := e.Refresh([]RefreshCell{
		{TextDocument: TextDocumentItem{URI: w0, Version: 2, Text: "a = 1\n"}},
		{TextDocument: TextDocumentItem{URI: w1, Version: 2, Text: "b = 2\n"}},
	})
	if !ok {
		t.Fatal("Refresh returned ok=false")
	}
	if e.Version() <= beforeVersion {
		t.Error("version should strictly increase across Refresh")
	}
	if len(ev.ContentChanges) != 1 {
		t.Fatalf("len(ContentChanges) = %d, want 1: a single whole-document replacement", len(ev.ContentChanges))
	}

	doc := e.Document()
	cells := doc.Cells()
	if len(cells) != 2 || cells[0] != w0 || cells[1] != w1 {
		t.Errorf("Cells() = %v, want [%s, %s]", cells, w0, w1)
	}
}

func TestEngineOpenRejectsDoubleOpen(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cell := cellURI("/nb/seven.ipynb", "W0")
	e.Open(cell, "x = 1\n", 1, false)

	if _, ok := e.Open(cell, "x = 2\n", 2, false); ok {
		t.Error("Open on an already-open cell should return ok=false")
	}
}

func TestEngineCloseUnknownCellIsNoop(t *testing.T) {
	e := NewEngine(DefaultConfig())
	if _, ok := e.Close(cellURI("/nb/missing.ipynb", "W0")); ok {
		t.Error("Close on an unknown cell should return ok=false")
	}
}

func TestEngineEditUnknownCellIsNoop(t *testing.T) {
	e := NewEngine(DefaultConfig())
	if _, ok := e.Edit(cellURI("/nb/missing.ipynb", "W0"), nil); ok {
		t.Error("Edit on an unknown cell should return ok=false")
	}
}

func TestEngineInteractiveCloseIsNoopUntilInputCloses(t *testing.T) {
	e := NewEngine(DefaultConfig())
	notebookCell := cellURI("/nb/eight.ipynb", "W0")
	interactiveCell := DocumentURI("vscode-interactive-input:/Untitled-1.interactive#W0")

	e.Open(notebookCell, "x = 1\n", 1, false)
	e.Open(interactiveCell, "x + 1\n", 1, true)

	if _, ok := e.Close(notebookCell); ok {
		t.Error("closing an ordinary cell while interactive should be a no-op")
	}
	if len(e.Document().Cells()) != 2 {
		t.Error("cell should still be present after the no-op close")
	}

	if _, ok := e.Close(interactiveCell); !ok {
		t.Fatal("closing the interactive input cell should succeed")
	}
	if e.interactive {
		t.Error("interactive mode should turn off once the input cell closes")
	}
}

func TestEngineRefreshIgnoredWhileInteractive(t *testing.T) {
	e := NewEngine(DefaultConfig())
	interactiveCell := DocumentURI("vscode-interactive-input:/Untitled-1.interactive#W0")
	e.Open(interactiveCell, "x = 1\n", 1, true)

	if _, ok := e.Refresh([]RefreshCell{{TextDocument: TextDocumentItem{URI: interactiveCell, Text: "x = 2\n"}}}); ok {
		t.Error("Refresh should be ignored while the document is interactive")
	}
}

func TestEngineVersionMonotonicity(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cell := cellURI("/nb/nine.ipynb", "W0")

	versions := []int{}
	_, _ = e.Open(cell, "x = 1\n", 1, false)
	versions = append(versions, e.Version())
	_, _ = e.Edit(cell, []ContentChange{{Text: "x = 2\n"}})
	versions = append(versions, e.Version())
	_, _ = e.Close(cell)
	versions = append(versions, e.Version())

	for i := 1; i < len(versions); i++ {
		if versions[i] <= versions[i-1] {
			t.Errorf("version did not strictly increase: %v", versions)
		}
	}
}
