package concat

import "regexp"

// Document is a read-only snapshot of a concat document's current spans and
// line indexes. It is returned by Engine.Document and is stable only until
// the next mutation on the owning engine.
type Document struct {
	spans       []Span
	concatLines []Line
	realLines   []Line
	version     int
	closed      bool
	concatURI   DocumentURI
	notebookURI DocumentURI
	wordPattern *regexp.Regexp
	logger      interface{ Warn(string, ...any) }
}

// URI returns the concat document's own identity.
func (d *Document) URI() DocumentURI { return d.concatURI }

// NotebookURI returns the owning notebook's identity.
func (d *Document) NotebookURI() DocumentURI { return d.notebookURI }

// Version returns the document's current version.
func (d *Document) Version() int { return d.version }

// IsDirty is always true: there is no durable storage backing this
// document, so it is never considered saved.
func (d *Document) IsDirty() bool { return true }

// IsUntitled is always true, for the same reason as IsDirty.
func (d *Document) IsUntitled() bool { return true }

// Language reports the fixed language identifier: the concat document is
// always synthesized as Python source.
func (d *Document) Language() string { return "python" }

// EOL reports the fixed line ending: always LF.
func (d *Document) EOL() string { return "\n" }

// Save always returns false: there is no durable storage to write to.
func (d *Document) Save() bool { return false }

// LineAt returns the concat line at the given 0-based line number.
func (d *Document) LineAt(n int) (Line, bool) {
	return lineByNumber(d.concatLines, n)
}

// LineAtPosition returns the concat line containing position.
func (d *Document) LineAtPosition(pos Position) (Line, bool) {
	return lineByNumber(d.concatLines, pos.Line)
}

// GetText returns the full concat text if rng is nil, or the substring
// addressed by rng otherwise. Both positions are turned into concat offsets
// through the line index and the result is the substring
// [startOffset, endOffset), clamped to the document; this holds for
// same-line and cross-line ranges alike. See DESIGN.md.
func (d *Document) GetText(rng *Range) (string, error) {
	full := concatText(d.spans)
	if rng == nil {
		return full, nil
	}

	startLine, ok := lineByNumber(d.concatLines, rng.Start.Line)
	if !ok {
		return "", ErrInvalidRange
	}
	endLine, ok := lineByNumber(d.concatLines, rng.End.Line)
	if !ok {
		return "", ErrInvalidRange
	}

	startOffset := startLine.Offset + rng.Start.Character
	endOffset := endLine.Offset + rng.End.Character
	if startOffset < 0 || startOffset > len(full) {
		return "", ErrInvalidRange
	}

	length := endOffset - startOffset
	sliceEnd := startOffset + length
	if sliceEnd < startOffset {
		sliceEnd = startOffset
	}
	if sliceEnd > len(full) {
		sliceEnd = len(full)
	}
	return full[startOffset:sliceEnd], nil
}

// GetRealText returns the concatenation of every real span's real text,
// across all cells.
func (d *Document) GetRealText() string {
	return realText(d.spans)
}

// ConcatRangeOf returns the concat range spanned by a cell: the start of
// its first concat line to the line-break-inclusive end of its last.
func (d *Document) ConcatRangeOf(cellID DocumentURI) (Range, bool) {
	first, last, ok := cellSpanRange(d.spans, cellID)
	if !ok {
		return Range{}, false
	}
	startOffset := d.spans[first].ConcatStart
	endOffset := d.spans[last].ConcatEnd

	startLine, _, ok := lineContaining(d.concatLines, startOffset)
	if !ok {
		return Range{}, false
	}
	endLine, _, ok := lineContaining(d.concatLines, maxInt(endOffset-1, startOffset))
	if !ok {
		return Range{}, false
	}
	return Range{
		Start: Position{Line: startLine.LineNumber, Character: startOffset - startLine.Offset},
		End:   lineBreakInclusiveEndPosition(endLine),
	}, true
}

// RealRangeOf returns the concat range corresponding to the real (non
// synthetic) spans owned by a cell.
func (d *Document) RealRangeOf(cellID DocumentURI) (Range, bool) {
	first, ok := firstRealSpanOfCell(d.spans, cellID)
	if !ok {
		return Range{}, false
	}
	last, _ := lastRealSpanOfCell(d.spans, cellID)

	startLine, _, ok := lineContaining(d.concatLines, first.ConcatStart)
	if !ok {
		return Range{}, false
	}
	endLine, _, ok := lineContaining(d.concatLines, maxInt(last.ConcatEnd-1, first.ConcatStart))
	if !ok {
		return Range{}, false
	}
	return Range{
		Start: Position{Line: startLine.LineNumber, Character: first.ConcatStart - startLine.Offset},
		End:   Position{Line: endLine.LineNumber, Character: last.ConcatEnd - endLine.Offset},
	}, true
}

// Cells returns the document's cell ids in first-encounter order.
func (d *Document) Cells() []DocumentURI {
	return cellsInOrder(d.spans)
}

// WordRangeAtPosition finds the word covering pos on its concat line, using
// pattern if non-nil and not empty-matching, otherwise the document's
// configured default.
func (d *Document) WordRangeAtPosition(pos Position, pattern *regexp.Regexp) (Range, bool) {
	line, ok := lineByNumber(d.concatLines, pos.Line)
	if !ok {
		return Range{}, false
	}
	effective := pattern
	if effective == nil || effective.MatchString("") {
		if effective != nil && d.logger != nil {
			d.logger.Warn("word pattern %q matches the empty string; using the default pattern", effective.String())
		}
		effective = resolveWordPattern(d.wordPattern)
	}
	start, end, ok := findWordAt(effective, line.Text, pos.Character)
	if !ok {
		return Range{}, false
	}
	return Range{
		Start: Position{Line: pos.Line, Character: start},
		End:   Position{Line: pos.Line, Character: end},
	}, true
}

// ConcatPosition implements coordinate mapper operation concat_position:
// translate a cell-local (line, character) position into the corresponding
// concat (line, character) position. Returns the zero position if cellID
// has no real content or pos falls outside it.
func (d *Document) ConcatPosition(cellID DocumentURI, pos Position) Position {
	return concatPositionForCell(d.spans, d.concatLines, d.realLines, cellID, pos)
}

// NotebookLocation implements coordinate mapper operation notebook_location:
// map a concat range back to the owning cell id and its cell-local range.
// Returns an empty cell id and the input range unchanged if the range lies
// entirely in synthetic territory with no owning real content.
func (d *Document) NotebookLocation(concatRange Range) (DocumentURI, Range) {
	return notebookLocation(d.spans, d.concatLines, d.realLines, concatRange)
}

// NotebookOffset implements coordinate mapper operation notebook_offset:
// translate an absolute concat offset into a cell-local real offset within
// cellID.
func (d *Document) NotebookOffset(cellID DocumentURI, concatOffset int) int {
	return notebookOffset(d.spans, cellID, concatOffset)
}

// OffsetAt always fails: the concat document's real coordinates are
// discontiguous across cells, so a single flat offset can never be
// answered correctly by a generic caller. Use RealRangeOf/ConcatRangeOf
// and the cell-aware mapper functions instead.
func (d *Document) OffsetAt(pos Position) (int, error) {
	return 0, ErrGenericPositionAPI
}

// PositionAt is the generic-caller guard symmetric to OffsetAt.
func (d *Document) PositionAt(offset int) (Position, error) {
	return Position{}, ErrGenericPositionAPI
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
