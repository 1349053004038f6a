package concat

// This file implements the coordinate mapper: bidirectional translation
// between concat-document coordinates and cell-local ("notebook") real
// coordinates. Every function here is pure over the span/line slices
// passed in — the mutation engine and the document facade both call
// through this layer rather than walking spans themselves.

// realToConcat locates the real span containing realOffset and translates
// into the concat coordinate system. Offsets outside any real span are
// returned unchanged.
func realToConcat(spans []Span, realOffset int) int {
	if s, _, ok := spanContainingReal(spans, realOffset); ok {
		return realOffset - s.RealStart + s.ConcatStart
	}
	return realOffset
}

// concatToClosestReal locates the span containing concatOffset. Real spans
// translate directly; synthetic spans collapse to their anchor
// (RealStart). Offsets outside any span are returned unchanged.
func concatToClosestReal(spans []Span, concatOffset int) int {
	if s, _, ok := spanContainingConcat(spans, concatOffset); ok {
		if s.IsReal {
			return concatOffset - s.ConcatStart + s.RealStart
		}
		return s.RealStart
	}
	return concatOffset
}

// concatOffsetForCellPosition resolves a cell-local position to an absolute
// concat offset, without looking up the resulting concat line (see
// concatPositionForCell for the line-resolving variant).
func concatOffsetForCellPosition(spans []Span, realLines []Line, cellID DocumentURI, pos Position) (int, bool) {
	firstReal, ok := firstRealSpanOfCell(spans, cellID)
	if !ok {
		return 0, false
	}
	firstRealLine, _, ok := lineContaining(realLines, firstReal.RealStart)
	if !ok {
		return 0, false
	}

	targetLineNum := pos.Line + firstRealLine.LineNumber
	targetLine, ok := lineByNumber(realLines, targetLineNum)
	if !ok {
		return 0, false
	}

	absRealOffset := targetLine.Offset + pos.Character
	return realToConcat(spans, absRealOffset), true
}

// concatPositionForCell implements coordinate mapper operation
// concat_position: translate a cell-local position into a concat
// (line, character) position. Returns the zero position if the cell has no
// real content.
func concatPositionForCell(spans []Span, concatLines, realLines []Line, cellID DocumentURI, pos Position) Position {
	concatOffset, ok := concatOffsetForCellPosition(spans, realLines, cellID, pos)
	if !ok {
		return Position{}
	}

	concatLine, _, ok := lineContaining(concatLines, concatOffset)
	if !ok {
		return Position{}
	}

	return Position{
		Line:      concatLine.LineNumber,
		Character: concatOffset - concatLine.Offset,
	}
}

// notebookPosition is the supporting projection behind notebookLocation:
// given an absolute concat position, find the owning real span and
// translate back into that span's cell-local (line, character) position.
// Returns an empty cell id if the concat position falls in synthetic
// territory with no owning real content.
func notebookPosition(spans []Span, concatLines, realLines []Line, concatPos Position) (DocumentURI, Position) {
	concatLine, ok := lineByNumber(concatLines, concatPos.Line)
	if !ok {
		return "", Position{}
	}
	concatOffset := concatLine.Offset + concatPos.Character

	s, _, ok := spanContainingConcat(spans, concatOffset)
	if !ok {
		return "", Position{}
	}

	realOffset := concatToClosestReal(spans, concatOffset)
	realLine, _, ok := lineContaining(realLines, realOffset)
	if !ok {
		return "", Position{}
	}

	firstReal, ok := firstRealSpanOfCell(spans, s.CellID)
	if !ok {
		return "", Position{}
	}
	firstRealLine, _, ok := lineContaining(realLines, firstReal.RealStart)
	if !ok {
		return "", Position{}
	}

	return s.CellID, Position{
		Line:      realLine.LineNumber - firstRealLine.LineNumber,
		Character: realOffset - realLine.Offset,
	}
}

// notebookLocation implements coordinate mapper operation
// notebook_location: map a concat range back to a cell id and cell-local
// range. If the range has no overlapping real content, returns an empty
// cell id and the input range unchanged (the range lies entirely in
// synthetic territory).
func notebookLocation(spans []Span, concatLines, realLines []Line, concatRange Range) (DocumentURI, Range) {
	startLine, ok := lineByNumber(concatLines, concatRange.Start.Line)
	if !ok {
		return "", concatRange
	}
	startOffset := startLine.Offset + concatRange.Start.Character

	endLine, ok := lineByNumber(concatLines, concatRange.End.Line)
	if !ok {
		return "", concatRange
	}
	endOffset := endLine.Offset + concatRange.End.Character

	// Snap the start up to the first overlapping real span's start.
	snapped := startOffset
	found := false
	for _, s := range spans {
		if !s.IsReal {
			continue
		}
		if s.ConcatEnd <= startOffset || s.ConcatStart >= endOffset {
			continue
		}
		if s.ConcatStart > snapped {
			snapped = s.ConcatStart
		}
		found = true
		break
	}
	if !found {
		return "", concatRange
	}

	startConcatLine, _, ok := lineContaining(concatLines, snapped)
	if !ok {
		return "", concatRange
	}
	startPos := Position{Line: startConcatLine.LineNumber, Character: snapped - startConcatLine.Offset}

	cellID, cellStart := notebookPosition(spans, concatLines, realLines, startPos)
	if cellID == "" {
		return "", concatRange
	}
	_, cellEnd := notebookPosition(spans, concatLines, realLines, concatRange.End)

	return cellID, Range{Start: cellStart, End: cellEnd}
}

// notebookOffset implements coordinate mapper operation notebook_offset:
// translate an absolute concat offset into a cell-local real offset.
func notebookOffset(spans []Span, cellID DocumentURI, concatOffset int) int {
	closest := concatToClosestReal(spans, concatOffset)
	firstReal, ok := firstRealSpanOfCell(spans, cellID)
	if !ok {
		return closest
	}
	return closest - firstReal.RealStart
}
