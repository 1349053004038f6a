package concat

import "strings"

// Line is one line of text inside either the concat document or the real
// document, tagged with the cell that owns it.
type Line struct {
	CellID     DocumentURI
	LineNumber int
	Offset     int
	Text       string
	terminated bool
}

// EndOffset is the offset just past Text, excluding any line terminator.
func (l Line) EndOffset() int {
	return l.Offset + len(l.Text)
}

// LineBreakInclusiveEnd is the offset just past Text's terminator, or equal
// to EndOffset for a final, unterminated line.
func (l Line) LineBreakInclusiveEnd() int {
	if l.terminated {
		return l.Offset + len(l.Text) + 1
	}
	return l.Offset + len(l.Text)
}

// buildLines splits the text produced by textFor for each cell (in order)
// into a flat, globally-offset Line array. The final piece of each split is
// retained even when empty, so end-of-document positions resolve.
func buildLines(cells []DocumentURI, textFor func(DocumentURI) string) []Line {
	var lines []Line
	offset := 0
	lineNumber := 0

	for _, cellID := range cells {
		pieces := strings.Split(textFor(cellID), "\n")
		for i, piece := range pieces {
			terminated := i < len(pieces)-1
			lines = append(lines, Line{
				CellID:     cellID,
				LineNumber: lineNumber,
				Offset:     offset,
				Text:       piece,
				terminated: terminated,
			})
			lineNumber++
			if terminated {
				offset += len(piece) + 1
			} else {
				offset += len(piece)
			}
		}
	}

	return lines
}

// lineContaining returns the last line whose Offset is at or before offset,
// along with its index into lines. An offset past the end of the final
// line resolves to that final line.
func lineContaining(lines []Line, offset int) (Line, int, bool) {
	if len(lines) == 0 {
		return Line{}, -1, false
	}

	lo, hi, best := 0, len(lines)-1, -1
	for lo <= hi {
		mid := (lo + hi) / 2
		if lines[mid].Offset <= offset {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if best == -1 {
		return Line{}, -1, false
	}
	return lines[best], best, true
}

// lineByNumber returns the line with the given global line number.
func lineByNumber(lines []Line, n int) (Line, bool) {
	if n < 0 || n >= len(lines) {
		return Line{}, false
	}
	return lines[n], true
}
