package concat

import "regexp"

// defaultWordPattern mirrors the default-identifier-pattern idiom the
// teacher's navigation code reaches for: compile once, fall back to it
// whenever a caller-supplied pattern turns out to be unusable.
var defaultWordPattern = regexp.MustCompile(`[A-Za-z0-9_]+`)

// resolveWordPattern returns pattern if it is non-nil and does not match
// the empty string, otherwise the default pattern. The caller is
// responsible for surfacing the substitution as a diagnostic; this
// function only decides which pattern wins.
func resolveWordPattern(pattern *regexp.Regexp) *regexp.Regexp {
	if pattern == nil || pattern.MatchString("") {
		return defaultWordPattern
	}
	return pattern
}

// findWordAt runs pattern over line and returns the 0-based [start, end)
// character range of the match covering character, if any.
func findWordAt(pattern *regexp.Regexp, line string, character int) (start, end int, ok bool) {
	for _, loc := range pattern.FindAllStringIndex(line, -1) {
		if character >= loc[0] && character <= loc[1] {
			return loc[0], loc[1], true
		}
	}
	return 0, 0, false
}
