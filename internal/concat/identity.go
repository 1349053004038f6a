package concat

import (
	"crypto/sha1"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// isInteractiveCell reports whether cellID belongs to the distinguished
// interactive input cell. Matching is by substring, not scheme equality —
// a deliberate reading of the source's literal "URI contains the
// interactive-input scheme token" behavior rather than a stricter
// scheme-equality check.
func isInteractiveCell(cellID DocumentURI, interactiveScheme string) bool {
	if interactiveScheme == "" {
		return false
	}
	return strings.Contains(cellID.String(), interactiveScheme)
}

// deriveConcatIdentity computes the concat document's own URI from the
// first observed cell: a file in the cell's directory named
// "_NotebookConcat_<hash>.py", where hash is a 12-hex-char truncated SHA-1
// of the cell's filesystem path.
func deriveConcatIdentity(cellID DocumentURI) DocumentURI {
	path := URIToFilePath(cellID)
	dir := filepath.Dir(path)
	basename := "_NotebookConcat_" + sha1Hex12(path) + ".py"
	return FilePathToURI(filepath.Join(dir, basename))
}

func sha1Hex12(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// deriveNotebookIdentity computes the owning notebook's URI from the first
// observed cell.
func deriveNotebookIdentity(cellID DocumentURI, interactiveScheme string) DocumentURI {
	switch {
	case isInteractiveCell(cellID, interactiveScheme):
		return cellID.WithScheme(interactiveScheme).WithoutFragment()
	case strings.Contains(cellID.Fragment(), "untitled"):
		return cellID.WithScheme("untitled").WithoutFragmentAndQuery()
	default:
		return FilePathToURI(URIToFilePath(cellID))
	}
}
