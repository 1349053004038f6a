package concat

import (
	"context"
	"strings"

	"github.com/dshills/notebookconcat/internal/applog"
	"github.com/dshills/notebookconcat/internal/event/dispatch"
)

// Engine applies Open/Close/Edit/Refresh to a span list, keeps the concat
// and real coordinate systems in lock-step, and emits one outbound change
// event per accepted inbound event. It assumes serial event application:
// callers must not call into an Engine concurrently, and must not read its
// Document snapshot while a mutation is in flight.
type Engine struct {
	cfg EngineConfig

	spans       []Span
	concatLines []Line
	realLines   []Line

	version     int
	closed      bool
	interactive bool

	concatURI    DocumentURI
	notebookURI  DocumentURI
	identityInit bool

	logger     *applog.Logger
	dispatcher *dispatch.SyncDispatcher
	listeners  []dispatch.Handler
}

// NewEngine constructs an Engine with the given configuration. The engine
// starts empty and closed; its identity is derived lazily from the first
// cell it observes.
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		cfg:        cfg,
		closed:     true,
		logger:     applog.Default().WithComponent("concat-engine"),
		dispatcher: dispatch.NewSyncDispatcher(),
	}
}

// AddListener subscribes h to every outbound change event the engine
// emits.
func (e *Engine) AddListener(h dispatch.Handler) {
	e.listeners = append(e.listeners, h)
}

// Version returns the engine's current version counter.
func (e *Engine) Version() int { return e.version }

// Closed reports whether the document currently holds no spans.
func (e *Engine) Closed() bool { return e.closed }

// Document returns a read-only facade over the engine's current state.
func (e *Engine) Document() *Document {
	return &Document{
		spans:       e.spans,
		concatLines: e.concatLines,
		realLines:   e.realLines,
		version:     e.version,
		closed:      e.closed,
		concatURI:   e.concatURI,
		notebookURI: e.notebookURI,
		wordPattern: e.cfg.WordPattern,
		logger:      e.logger,
	}
}

func (e *Engine) broadcast(ev OutboundChangeEvent) {
	if len(e.listeners) == 0 {
		return
	}
	ctx := context.Background()
	e.dispatcher.DispatchAll(ctx, ev, e.listeners)
}

// fragmentForCell derives a cell's ordering key: -1 for the interactive
// input cell, otherwise the integer parsed from its fragment.
func fragmentForCell(cellID DocumentURI, interactiveScheme string) int {
	if isInteractiveCell(cellID, interactiveScheme) {
		return InputCellFragment
	}
	return FragmentOrdinal(cellID.Fragment())
}

// Open inserts a new cell's spans into the document. It is a no-op
// (returns ok=false) if the cell is already open.
func (e *Engine) Open(cellID DocumentURI, text string, version int, forceAppend bool) (OutboundChangeEvent, bool) {
	if _, _, exists := cellSpanRange(e.spans, cellID); exists {
		return OutboundChangeEvent{}, false
	}

	oldConcatLines := e.concatLines
	insertedAt, newSpans := e.openInternal(cellID, text, version, forceAppend)

	startPos := positionInLines(oldConcatLines, insertedAt)
	ev := OutboundChangeEvent{
		TextDocument: VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: TextDocumentIdentifier{URI: e.concatURI},
			Version:                e.version,
		},
		ContentChanges: []OutboundContentChange{{
			Range:       Range{Start: startPos, End: startPos},
			RangeOffset: intPtr(insertedAt),
			RangeLength: 0,
			Text:        concatText(newSpans),
		}},
	}
	e.broadcast(ev)
	return ev, true
}

// openInternal performs the mutation steps shared by Open and Refresh's
// re-seeding loop, without constructing or broadcasting an event.
func (e *Engine) openInternal(cellID DocumentURI, text string, version int, forceAppend bool) (int, []Span) {
	if version > e.version {
		e.version = version
	} else {
		e.version++
	}
	e.closed = false

	if !e.identityInit {
		e.concatURI = deriveConcatIdentity(cellID)
		e.notebookURI = deriveNotebookIdentity(cellID, e.cfg.InteractiveScheme)
		e.identityInit = true
	}

	interactiveCell := isInteractiveCell(cellID, e.cfg.InteractiveScheme)
	if interactiveCell {
		e.interactive = true
	}

	normalized := normalizeCellText(text)
	fragment := fragmentForCell(cellID, e.cfg.InteractiveScheme)
	idx := e.insertionIndex(fragment, forceAppend)

	concatOffset, realOffset := e.offsetsAt(idx)
	includeHeader := concatOffset == 0 && !interactiveCell
	newSpans := buildSpans(cellID, fragment, normalized, concatOffset, realOffset, includeHeader, e.cfg.HeaderText, e.cfg.SuppressionEnabled)

	deltaConcat := totalConcatLen(newSpans)
	deltaReal := totalRealLen(newSpans)
	shiftSpans(e.spans, idx, deltaConcat, deltaReal)

	e.spans = append(e.spans[:idx:idx], append(newSpans, e.spans[idx:]...)...)
	e.rebuildLines()

	return concatOffset, newSpans
}

// insertionIndex locates where a cell with the given fragment should be
// inserted: forced or interactive-input cells append; otherwise the cell
// is inserted before the first existing span whose fragment sorts after
// it, or at the end (excluding a trailing interactive-input run) if none
// do.
func (e *Engine) insertionIndex(fragment int, forceAppend bool) int {
	if forceAppend || fragment == InputCellFragment {
		return len(e.spans)
	}
	for i, s := range e.spans {
		if s.Fragment > fragment {
			return i
		}
	}
	end := len(e.spans)
	for end > 0 && e.spans[end-1].Fragment == InputCellFragment {
		end--
	}
	return end
}

// offsetsAt returns the concat/real offsets at span index idx: the
// successor span's start offsets, or the current document end if idx is
// past the last span.
func (e *Engine) offsetsAt(idx int) (int, int) {
	if idx < len(e.spans) {
		return e.spans[idx].ConcatStart, e.spans[idx].RealStart
	}
	if len(e.spans) == 0 {
		return 0, 0
	}
	last := e.spans[len(e.spans)-1]
	return last.ConcatEnd, last.RealEnd
}

func (e *Engine) rebuildLines() {
	cells := cellsInOrder(e.spans)
	e.concatLines = buildLines(cells, func(c DocumentURI) string { return textForCellConcat(e.spans, c) })
	e.realLines = buildLines(cells, func(c DocumentURI) string { return realTextOfCell(e.spans, c) })
}

// Close removes a cell's spans. In interactive mode, closing an ordinary
// notebook cell is a no-op (cells persist logically); only closing the
// interactive input cell itself clears state, including turning off
// interactive mode.
func (e *Engine) Close(cellID DocumentURI) (OutboundChangeEvent, bool) {
	first, last, ok := cellSpanRange(e.spans, cellID)
	if !ok {
		return OutboundChangeEvent{}, false
	}

	closingInput := isInteractiveCell(cellID, e.cfg.InteractiveScheme)
	if e.interactive && !closingInput {
		return OutboundChangeEvent{}, false
	}
	if e.interactive && closingInput {
		// Closing the input cell clears the whole document, not just its run.
		first, last = 0, len(e.spans)-1
	}

	e.version++

	removedConcatStart := e.spans[first].ConcatStart
	removedConcatEnd := e.spans[last].ConcatEnd
	removedLen := removedConcatEnd - removedConcatStart
	startPos := positionInLines(e.concatLines, removedConcatStart)
	endPos := positionInLines(e.concatLines, removedConcatEnd)

	e.spans = append(e.spans[:first:first], e.spans[last+1:]...)
	// Decision: preserve the source's asymmetry rather than correct it —
	// concat offsets shift, real offsets do not. See DESIGN.md.
	shiftSpans(e.spans, first, -removedLen, 0)

	e.rebuildLines()
	if closingInput {
		e.interactive = false
	}
	if len(e.spans) == 0 {
		e.closed = true
	}

	ev := OutboundChangeEvent{
		TextDocument: VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: TextDocumentIdentifier{URI: e.concatURI},
			Version:                e.version,
		},
		ContentChanges: []OutboundContentChange{{
			Range:       Range{Start: startPos, End: endPos},
			RangeOffset: intPtr(removedConcatStart),
			RangeLength: removedLen,
			Text:        "",
		}},
	}
	e.broadcast(ev)
	return ev, true
}

// Edit applies zero or more content changes to one cell. Unknown cells are
// ignored. A failure while mapping one change is logged and the remaining
// changes in the batch are still applied.
func (e *Engine) Edit(cellID DocumentURI, changes []ContentChange) (OutboundChangeEvent, bool) {
	if _, _, ok := cellSpanRange(e.spans, cellID); !ok {
		return OutboundChangeEvent{}, false
	}

	e.version++

	var outgoing []OutboundContentChange
	for _, change := range changes {
		oc, err := e.applyOneChange(cellID, change)
		if err != nil {
			e.logger.Warn("edit mapping failed for cell %s: %v", cellID, err)
			continue
		}
		outgoing = append(outgoing, oc)
	}

	e.rebuildLines()

	ev := OutboundChangeEvent{
		TextDocument: VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: TextDocumentIdentifier{URI: e.concatURI},
			Version:                e.version,
		},
		ContentChanges: outgoing,
	}
	e.broadcast(ev)
	return ev, true
}

// applyOneChange implements one splice-and-translate step of Edit.
func (e *Engine) applyOneChange(cellID DocumentURI, change ContentChange) (OutboundContentChange, error) {
	first, last, ok := cellSpanRange(e.spans, cellID)
	if !ok {
		return OutboundContentChange{}, &MappingError{CellID: cellID, Op: "edit", Err: ErrCellNotOpen}
	}
	oldSpans := append([]Span(nil), e.spans[first:last+1]...)
	oldRealText := realTextOfCell(e.spans, cellID)

	replacement := strings.ReplaceAll(change.Text, "\r", "")
	rng := change.EffectiveRange()

	localLines := buildLines([]DocumentURI{cellID}, func(DocumentURI) string { return oldRealText })
	startOffset := clampOffset(localOffset(localLines, rng.Start), len(oldRealText))
	endOffset := clampOffset(localOffset(localLines, rng.End), len(oldRealText))
	if endOffset < startOffset {
		endOffset = startOffset
	}

	newRealText := oldRealText[:startOffset] + replacement + oldRealText[endOffset:]

	includeHeader := !oldSpans[0].IsReal
	newSpans := buildSpans(cellID, oldSpans[0].Fragment, normalizeCellText(newRealText), oldSpans[0].ConcatStart, oldSpans[0].RealStart, includeHeader, e.cfg.HeaderText, e.cfg.SuppressionEnabled)

	oldConcatLines := buildLines(cellsInOrder(e.spans), func(c DocumentURI) string { return textForCellConcat(e.spans, c) })

	var outgoing OutboundContentChange
	if samePartialShape(oldSpans, newSpans) {
		absOldStart := oldSpans[0].RealStart + startOffset
		absOldEnd := oldSpans[0].RealStart + endOffset
		concatStart := realToConcat(e.spans, absOldStart)
		concatEnd := realToConcat(e.spans, absOldEnd)

		outgoing = OutboundContentChange{
			Range:       Range{Start: positionInLines(oldConcatLines, concatStart), End: positionInLines(oldConcatLines, concatEnd)},
			RangeOffset: intPtr(concatStart),
			RangeLength: concatEnd - concatStart,
			Text:        replacement,
		}
	} else {
		cellStart := oldSpans[0].ConcatStart
		cellEnd := oldSpans[len(oldSpans)-1].ConcatEnd
		startLine, _, _ := lineContaining(oldConcatLines, cellStart)
		endLine, _, _ := lineContaining(oldConcatLines, cellEnd)

		outgoing = OutboundContentChange{
			Range:       Range{Start: Position{Line: startLine.LineNumber, Character: 0}, End: lineBreakInclusiveEndPosition(endLine)},
			RangeOffset: intPtr(cellStart),
			RangeLength: cellEnd - cellStart,
			Text:        concatText(newSpans),
		}
	}

	deltaConcat := totalConcatLen(newSpans) - totalConcatLen(oldSpans)
	deltaReal := totalRealLen(newSpans) - totalRealLen(oldSpans)

	e.spans = append(e.spans[:first:first], append(newSpans, e.spans[last+1:]...)...)
	shiftSpans(e.spans, first+len(newSpans), deltaConcat, deltaReal)

	return outgoing, nil
}

// samePartialShape reports whether old and new span runs have the same
// number of spans with matching real/synthetic shape at each position —
// the gate this engine uses to decide the partial-edit path is available,
// rather than a whole-cell replacement.
func samePartialShape(old, new []Span) bool {
	if len(old) != len(new) {
		return false
	}
	for i := range old {
		if old[i].IsReal != new[i].IsReal {
			return false
		}
	}
	return true
}

// Refresh re-seeds the document from a full cell list. If the document is
// interactive, it is ignored (interactive cells are not reorderable). If
// the new real contents are unchanged, nothing happens.
func (e *Engine) Refresh(cells []RefreshCell) (OutboundChangeEvent, bool) {
	if e.interactive {
		return OutboundChangeEvent{}, false
	}

	var joined strings.Builder
	for _, c := range cells {
		joined.WriteString(strings.ReplaceAll(c.TextDocument.Text, "\r", ""))
		joined.WriteByte('\n')
	}
	newRealContents := joined.String()
	if newRealContents == realText(e.spans) {
		return OutboundChangeEvent{}, false
	}

	oldConcatLines := e.concatLines
	oldConcatLen := totalConcatLen(e.spans)
	oldEndPos := positionInLines(oldConcatLines, oldConcatLen)

	e.spans = nil
	e.concatLines = nil
	e.realLines = nil
	e.identityInit = false
	e.closed = false
	e.version++

	for _, c := range cells {
		e.openInternal(c.TextDocument.URI, c.TextDocument.Text, c.TextDocument.Version, true)
	}

	ev := OutboundChangeEvent{
		TextDocument: VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: TextDocumentIdentifier{URI: e.concatURI},
			Version:                e.version,
		},
		ContentChanges: []OutboundContentChange{{
			Range:       Range{Start: Position{}, End: oldEndPos},
			RangeOffset: intPtr(0),
			RangeLength: oldConcatLen,
			Text:        concatText(e.spans),
		}},
	}
	e.broadcast(ev)
	return ev, true
}

func positionInLines(lines []Line, offset int) Position {
	if l, _, ok := lineContaining(lines, offset); ok {
		return Position{Line: l.LineNumber, Character: offset - l.Offset}
	}
	return Position{}
}

func lineBreakInclusiveEndPosition(line Line) Position {
	if line.terminated {
		return Position{Line: line.LineNumber + 1, Character: 0}
	}
	return Position{Line: line.LineNumber, Character: len(line.Text)}
}

func localOffset(lines []Line, pos Position) int {
	if line, ok := lineByNumber(lines, pos.Line); ok {
		return line.Offset + pos.Character
	}
	if len(lines) == 0 {
		return 0
	}
	last := lines[len(lines)-1]
	return last.Offset + len(last.Text)
}

func clampOffset(offset, max int) int {
	if offset < 0 {
		return 0
	}
	if offset > max {
		return max
	}
	return offset
}

func intPtr(n int) *int { return &n }
