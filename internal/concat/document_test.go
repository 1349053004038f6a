package concat

import (
	"errors"
	"testing"
)

func TestDocumentGetTextWholeDocument(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cell := cellURI("/nb/doc1.ipynb", "W0")
	e.Open(cell, "print(1)\n", 1, false)

	doc := e.Document()
	got, err := doc.GetText(nil)
	if err != nil {
		t.Fatalf("GetText(nil) error = %v", err)
	}
	want := "import IPython\nIPython.get_ipython()\nprint(1)\n"
	if got != want {
		t.Errorf("GetText(nil) = %q, want %q", got, want)
	}
}

func TestDocumentGetTextSameLineRange(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cell := cellURI("/nb/doc2.ipynb", "W0")
	e.Open(cell, "print(12345)\n", 1, false)
	doc := e.Document()

	// A same-line range returns the plain substring between the two
	// positions.
	rng := &Range{Start: Position{Line: 2, Character: 0}, End: Position{Line: 2, Character: 5}}
	got, err := doc.GetText(rng)
	if err != nil {
		t.Fatalf("GetText error = %v", err)
	}
	if got != "print" {
		t.Errorf("GetText(same-line range) = %q, want %q", got, "print")
	}
}

func TestDocumentGetTextCrossLineRange(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cell := cellURI("/nb/doc3.ipynb", "W0")
	e.Open(cell, "ab\ncd\n", 1, false)
	doc := e.Document()

	full, _ := doc.GetText(nil)
	rng := &Range{Start: Position{Line: 2, Character: 0}, End: Position{Line: 3, Character: 2}}
	got, err := doc.GetText(rng)
	if err != nil {
		t.Fatalf("GetText error = %v", err)
	}
	wantLen := len("ab\ncd")
	if len(got) != wantLen {
		t.Errorf("GetText(cross-line range) = %q (len %d), want length %d out of %q", got, len(got), wantLen, full)
	}
}

func TestDocumentRealRangeOf(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cell := cellURI("/nb/doc4.ipynb", "W0")
	e.Open(cell, "!pip install x\nprint(1)\n", 1, false)
	doc := e.Document()

	rng, ok := doc.RealRangeOf(cell)
	if !ok {
		t.Fatal("RealRangeOf returned ok=false")
	}
	// Real spans start right after the header, at the first real span's
	// concat offset, and the range does NOT extend line-break-inclusive.
	if rng.Start.Line != 2 {
		t.Errorf("RealRangeOf.Start.Line = %d, want 2", rng.Start.Line)
	}
}

func TestDocumentOffsetAtAndPositionAtFailLoudly(t *testing.T) {
	e := NewEngine(DefaultConfig())
	doc := e.Document()

	if _, err := doc.OffsetAt(Position{}); !errors.Is(err, ErrGenericPositionAPI) {
		t.Errorf("OffsetAt error = %v, want ErrGenericPositionAPI", err)
	}
	if _, err := doc.PositionAt(0); !errors.Is(err, ErrGenericPositionAPI) {
		t.Errorf("PositionAt error = %v, want ErrGenericPositionAPI", err)
	}
}

func TestDocumentWordRangeAtPosition(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cell := cellURI("/nb/doc5.ipynb", "W0")
	e.Open(cell, "foo_bar = 1\n", 1, false)
	doc := e.Document()

	rng, ok := doc.WordRangeAtPosition(Position{Line: 2, Character: 1}, nil)
	if !ok {
		t.Fatal("WordRangeAtPosition returned ok=false")
	}
	if rng.Start.Character != 0 || rng.End.Character != 7 {
		t.Errorf("WordRangeAtPosition = %+v, want [0,7) for %q", rng, "foo_bar")
	}
}

func TestDocumentConcatPosition(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cell := cellURI("/nb/doc6.ipynb", "W0")
	e.Open(cell, "print(1)\n", 1, false)
	doc := e.Document()

	got := doc.ConcatPosition(cell, Position{Line: 0, Character: 0})
	want := Position{Line: 2, Character: 0}
	if got != want {
		t.Errorf("ConcatPosition(cell, {0,0}) = %+v, want %+v", got, want)
	}
}

func TestDocumentNotebookLocation(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cell := cellURI("/nb/doc7.ipynb", "W0")
	e.Open(cell, "print(1)\n", 1, false)
	doc := e.Document()

	concatRange := Range{Start: Position{Line: 2, Character: 0}, End: Position{Line: 2, Character: 8}}
	gotCell, gotRange := doc.NotebookLocation(concatRange)
	if gotCell != cell {
		t.Errorf("NotebookLocation cell = %q, want %q", gotCell, cell)
	}
	want := Range{Start: Position{Line: 0, Character: 0}, End: Position{Line: 0, Character: 8}}
	if gotRange != want {
		t.Errorf("NotebookLocation range = %+v, want %+v", gotRange, want)
	}
}

func TestDocumentNotebookLocationPastLastLineReturnsNoCell(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cell := cellURI("/nb/doc8.ipynb", "W0")
	e.Open(cell, "print(1)\n", 1, false)
	doc := e.Document()

	// A range entirely past the last line resolves no cell because the
	// line lookup itself fails, and the input range comes back unchanged.
	concatRange := Range{Start: Position{Line: 99, Character: 0}, End: Position{Line: 99, Character: 1}}
	gotCell, gotRange := doc.NotebookLocation(concatRange)
	if gotCell != "" {
		t.Errorf("NotebookLocation cell = %q, want empty", gotCell)
	}
	if gotRange != concatRange {
		t.Errorf("NotebookLocation range = %+v, want input range unchanged %+v", gotRange, concatRange)
	}
}

func TestDocumentNotebookOffset(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cell := cellURI("/nb/doc9.ipynb", "W0")
	e.Open(cell, "print(1)\n", 1, false)
	doc := e.Document()

	line, ok := doc.LineAt(2)
	if !ok {
		t.Fatal("LineAt(2) returned ok=false")
	}
	got := doc.NotebookOffset(cell, line.Offset)
	if got != 0 {
		t.Errorf("NotebookOffset(cell, line 2 start) = %d, want 0", got)
	}
}

func TestDocumentStaticFacadeFields(t *testing.T) {
	e := NewEngine(DefaultConfig())
	doc := e.Document()

	if !doc.IsDirty() {
		t.Error("IsDirty() should always be true")
	}
	if !doc.IsUntitled() {
		t.Error("IsUntitled() should always be true")
	}
	if doc.Language() != "python" {
		t.Errorf("Language() = %q, want %q", doc.Language(), "python")
	}
	if doc.EOL() != "\n" {
		t.Errorf("EOL() = %q, want %q", doc.EOL(), "\n")
	}
	if doc.Save() {
		t.Error("Save() should always be false")
	}
}
