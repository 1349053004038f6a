package concat

// Span is a contiguous run of the concat document owned by one cell. A real
// span carries the cell's own text; a synthetic span (header prelude or
// type-suppression suffix) carries text the engine inserted and contributes
// nothing to the real coordinate system.
type Span struct {
	CellID   DocumentURI
	Fragment int
	IsReal   bool

	ConcatStart, ConcatEnd int
	RealStart, RealEnd     int

	Text     string
	RealText string
}

// cellSpanRange returns the first and last index (inclusive) of the
// contiguous run of spans owned by cellID, and whether any were found.
func cellSpanRange(spans []Span, cellID DocumentURI) (first, last int, ok bool) {
	first = -1
	for i, s := range spans {
		if s.CellID == cellID {
			if first == -1 {
				first = i
			}
			last = i
			ok = true
		} else if ok {
			// Cell runs are contiguous; once we've left the run, stop.
			break
		}
	}
	return first, last, ok
}

// firstRealSpanOfCell returns the first real span owned by cellID.
func firstRealSpanOfCell(spans []Span, cellID DocumentURI) (Span, bool) {
	for _, s := range spans {
		if s.CellID == cellID && s.IsReal {
			return s, true
		}
	}
	return Span{}, false
}

// lastRealSpanOfCell returns the last real span owned by cellID.
func lastRealSpanOfCell(spans []Span, cellID DocumentURI) (Span, bool) {
	var last Span
	found := false
	for _, s := range spans {
		if s.CellID == cellID && s.IsReal {
			last = s
			found = true
		}
	}
	return last, found
}

// spanContainingConcat returns the span covering concatOffset, and its
// index.
func spanContainingConcat(spans []Span, concatOffset int) (Span, int, bool) {
	for i, s := range spans {
		if concatOffset >= s.ConcatStart && concatOffset < s.ConcatEnd {
			return s, i, true
		}
	}
	return Span{}, -1, false
}

// spanContainingReal returns the real span covering realOffset, and its
// index.
func spanContainingReal(spans []Span, realOffset int) (Span, int, bool) {
	for i, s := range spans {
		if s.IsReal && realOffset >= s.RealStart && realOffset < s.RealEnd {
			return s, i, true
		}
	}
	return Span{}, -1, false
}

// cellsInOrder returns the unique cell ids referenced by spans, in first
// encounter order.
func cellsInOrder(spans []Span) []DocumentURI {
	var cells []DocumentURI
	seen := make(map[DocumentURI]bool)
	for _, s := range spans {
		if !seen[s.CellID] {
			seen[s.CellID] = true
			cells = append(cells, s.CellID)
		}
	}
	return cells
}

// concatText concatenates all spans' text, in order.
func concatText(spans []Span) string {
	total := 0
	for _, s := range spans {
		total += len(s.Text)
	}
	buf := make([]byte, 0, total)
	for _, s := range spans {
		buf = append(buf, s.Text...)
	}
	return string(buf)
}

// realText concatenates all real spans' real text, in order.
func realText(spans []Span) string {
	total := 0
	for _, s := range spans {
		if s.IsReal {
			total += len(s.RealText)
		}
	}
	buf := make([]byte, 0, total)
	for _, s := range spans {
		if s.IsReal {
			buf = append(buf, s.RealText...)
		}
	}
	return string(buf)
}

// textForCellConcat concatenates the concat-side text (including any
// header or suppression suffix it owns) of a single cell's spans.
func textForCellConcat(spans []Span, cellID DocumentURI) string {
	var buf []byte
	for _, s := range spans {
		if s.CellID == cellID {
			buf = append(buf, s.Text...)
		}
	}
	return string(buf)
}

// realTextOfCell concatenates the real text owned by a single cell.
func realTextOfCell(spans []Span, cellID DocumentURI) string {
	var buf []byte
	for _, s := range spans {
		if s.CellID == cellID && s.IsReal {
			buf = append(buf, s.RealText...)
		}
	}
	return string(buf)
}

// totalConcatLen returns the length in bytes of the concatenation of text.
func totalConcatLen(spans []Span) int {
	n := 0
	for _, s := range spans {
		n += len(s.Text)
	}
	return n
}

// totalRealLen returns the length in bytes of the concatenation of real
// text.
func totalRealLen(spans []Span) int {
	n := 0
	for _, s := range spans {
		if s.IsReal {
			n += len(s.RealText)
		}
	}
	return n
}

// shiftSpans shifts every span at or after fromIndex by (concatDelta,
// realDelta), modifying spans in place.
func shiftSpans(spans []Span, fromIndex, concatDelta, realDelta int) {
	for i := fromIndex; i < len(spans); i++ {
		spans[i].ConcatStart += concatDelta
		spans[i].ConcatEnd += concatDelta
		spans[i].RealStart += realDelta
		spans[i].RealEnd += realDelta
	}
}
