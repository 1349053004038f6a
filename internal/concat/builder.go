package concat

import (
	"regexp"
	"strings"
)

// Fixed synthetic text literals.
const (
	headerPreludeText         = "import IPython\nIPython.get_ipython()\n"
	typeSuppressionSuffixText = " # type: ignore"
)

// triggerLinePattern matches the prefixes that cause a real span to split
// off a type-suppression suffix: a percent directive, a bang directive, or
// an await statement. Leading whitespace is permitted before all three.
var triggerLinePattern = regexp.MustCompile(`^\s*(%|!|await\s)`)

// buildSpans is the pure function at the heart of the span engine: given
// one cell's normalized source text, it produces the span run that
// represents that cell in the concat document.
//
// text must already be newline-normalized (CR stripped, single trailing
// \n) — callers enforce this at the engine boundary, not here.
func buildSpans(cellID DocumentURI, fragment int, text string, concatOffset, realOffset int, includeHeader bool, headerText string, suppressionEnabled bool) []Span {
	type segment struct {
		isReal bool
		text   string
	}
	var segments []segment

	if includeHeader {
		preamble := headerPreludeText
		if headerText != "" {
			if !strings.HasSuffix(headerText, "\n") {
				headerText += "\n"
			}
			preamble += headerText
		}
		segments = append(segments, segment{isReal: false, text: preamble})
	}

	if suppressionEnabled {
		pos := 0
		realStart := 0
		for {
			nl := strings.IndexByte(text[pos:], '\n')
			hasNL := nl >= 0
			lineEnd := len(text)
			if hasNL {
				lineEnd = pos + nl
			}

			if triggerLinePattern.MatchString(text[pos:lineEnd]) {
				segments = append(segments, segment{isReal: true, text: text[realStart:lineEnd]})
				segments = append(segments, segment{isReal: false, text: typeSuppressionSuffixText})
				realStart = lineEnd
			}

			if !hasNL {
				break
			}
			pos = lineEnd + 1
		}

		if realStart < len(text) || realStart == 0 {
			segments = append(segments, segment{isReal: true, text: text[realStart:]})
		}
	} else {
		segments = append(segments, segment{isReal: true, text: text})
	}

	spans := make([]Span, 0, len(segments))
	concat, real := concatOffset, realOffset
	for _, seg := range segments {
		span := Span{
			CellID:      cellID,
			Fragment:    fragment,
			IsReal:      seg.isReal,
			ConcatStart: concat,
			ConcatEnd:   concat + len(seg.text),
			RealStart:   real,
			Text:        seg.text,
		}
		if seg.isReal {
			span.RealEnd = real + len(seg.text)
			span.RealText = seg.text
			real = span.RealEnd
		} else {
			span.RealEnd = real
		}
		concat = span.ConcatEnd
		spans = append(spans, span)
	}
	return spans
}

// normalizeCellText strips carriage returns and guarantees at least one
// trailing newline, the contract every internal algorithm relies on.
func normalizeCellText(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text
}
