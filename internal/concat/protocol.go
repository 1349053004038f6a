package concat

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// DocumentURI is a URI identifying a cell, the concat document, or a
// notebook. Cell URIs follow the shape scheme://path#fragment, where
// fragment encodes the cell's ordering key.
type DocumentURI string

// String returns the URI as a plain string.
func (u DocumentURI) String() string { return string(u) }

// Scheme returns the URI's scheme, or "" if it cannot be parsed.
func (u DocumentURI) Scheme() string {
	parsed, err := url.Parse(string(u))
	if err != nil {
		return ""
	}
	return parsed.Scheme
}

// Fragment returns the URI's fragment (without the leading '#').
func (u DocumentURI) Fragment() string {
	parsed, err := url.Parse(string(u))
	if err != nil {
		return ""
	}
	return parsed.Fragment
}

// WithScheme returns a copy of the URI with its scheme replaced.
func (u DocumentURI) WithScheme(scheme string) DocumentURI {
	parsed, err := url.Parse(string(u))
	if err != nil {
		return u
	}
	parsed.Scheme = scheme
	return DocumentURI(parsed.String())
}

// WithoutFragment returns a copy of the URI with its fragment cleared.
func (u DocumentURI) WithoutFragment() DocumentURI {
	parsed, err := url.Parse(string(u))
	if err != nil {
		return u
	}
	parsed.Fragment = ""
	return DocumentURI(parsed.String())
}

// WithoutFragmentAndQuery returns a copy of the URI with its fragment and
// query stripped, used when deriving the "untitled" notebook identity.
func (u DocumentURI) WithoutFragmentAndQuery() DocumentURI {
	parsed, err := url.Parse(string(u))
	if err != nil {
		return u
	}
	parsed.Fragment = ""
	parsed.RawQuery = ""
	return DocumentURI(parsed.String())
}

// Position in a text document expressed as zero-based line and character
// offset. Character offset is a byte offset within its line, not a UTF-16
// code unit count (see DESIGN.md).
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range in a text document expressed as half-open start/end positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// TextDocumentIdentifier identifies a text document by URI.
type TextDocumentIdentifier struct {
	URI DocumentURI `json:"uri"`
}

// VersionedTextDocumentIdentifier identifies a specific version of a text
// document.
type VersionedTextDocumentIdentifier struct {
	TextDocumentIdentifier
	Version int `json:"version"`
}

// TextEdit represents a textual edit applicable to a text document.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// ContentChange describes one content change within a Change event: a
// tagged struct rather than duck-typed JSON, with Range as an explicit
// optional field that defaults to the zero range on absence.
type ContentChange struct {
	Range *Range `json:"range,omitempty"`
	Text  string `json:"text"`
}

// EffectiveRange returns c.Range, or the zero range {(0,0),(0,0)} if Range
// is absent (an insertion at the start of the cell).
func (c ContentChange) EffectiveRange() Range {
	if c.Range == nil {
		return Range{}
	}
	return *c.Range
}

// OutboundContentChange is one entry of an outbound change event.
// RangeOffset is optional in the JSON shape (omitted when nil); the engine
// sets it on every change it emits. RangeLength is always present.
type OutboundContentChange struct {
	Range       Range  `json:"range"`
	RangeOffset *int   `json:"rangeOffset,omitempty"`
	RangeLength int    `json:"rangeLength"`
	Text        string `json:"text"`
}

// OpenEvent is the inbound Open lifecycle event.
type OpenEvent struct {
	TextDocument TextDocumentItem
	ForceAppend  bool
}

// TextDocumentItem is an item transferring a text document's full content.
type TextDocumentItem struct {
	URI     DocumentURI `json:"uri"`
	Version int         `json:"version"`
	Text    string      `json:"text"`
}

// CloseEvent is the inbound Close lifecycle event.
type CloseEvent struct {
	TextDocument TextDocumentIdentifier
}

// ChangeEvent is the inbound Change lifecycle event: zero or more content
// changes applied to one cell, in submission order.
type ChangeEvent struct {
	TextDocument   TextDocumentIdentifier
	ContentChanges []ContentChange
}

// RefreshCell is one cell entry within a Refresh event.
type RefreshCell struct {
	TextDocument TextDocumentItem
}

// RefreshEvent is the inbound full-reseed event.
type RefreshEvent struct {
	Cells []RefreshCell
}

// OutboundChangeEvent is the single outbound event emitted for an accepted
// inbound event: a versioned identifier for the concat document plus one
// or more content changes, in the order produced.
type OutboundChangeEvent struct {
	TextDocument   VersionedTextDocumentIdentifier
	ContentChanges []OutboundContentChange
}

// FilePathToURI converts an absolute or relative filesystem path to a
// file:// DocumentURI. General URI parsing and filesystem-path handling are
// a host concern; this helper exists only because identity derivation must
// itself construct one file URI from a cell's path.
func FilePathToURI(path string) DocumentURI {
	if path == "" {
		return ""
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	path = filepath.ToSlash(path)

	if runtime.GOOS == "windows" && len(path) >= 2 && path[1] == ':' {
		path = "/" + path
	}

	u := &url.URL{Scheme: "file", Path: path}
	return DocumentURI(u.String())
}

// URIToFilePath converts a file:// DocumentURI back to a filesystem path.
func URIToFilePath(uri DocumentURI) string {
	if uri == "" {
		return ""
	}

	u, err := url.Parse(string(uri))
	if err != nil || u.Scheme != "file" {
		return string(uri)
	}

	path := u.Path
	if runtime.GOOS == "windows" && len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path)
}

// FragmentOrdinal parses a cell's fragment into its integer ordering key.
// Fragments are of the form "W<n>" (e.g. "W0", "W12"); the distinguished
// interactive-input cell has no numeric fragment and sorts via
// InputCellFragment instead. A fragment that does not parse returns 0, so
// malformed fragments sort first rather than panicking.
func FragmentOrdinal(fragment string) int {
	trimmed := strings.TrimPrefix(fragment, "W")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0
	}
	return n
}

// InputCellFragment is the distinguished fragment ordinal (-1) denoting the
// interactive input cell, which always sorts last.
const InputCellFragment = -1
