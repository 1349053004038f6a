package concat

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the span engine.
var (
	// ErrCellAlreadyOpen indicates Open was called for a cell that already
	// has spans in the document. Open silently ignores this case (returns
	// no event); callers that want to observe it can inspect the returned
	// bool instead of relying on this error.
	ErrCellAlreadyOpen = errors.New("cell already open")

	// ErrCellNotOpen indicates Close or Edit referenced a cell with no
	// spans in the document.
	ErrCellNotOpen = errors.New("cell not open")

	// ErrClosed indicates an operation was attempted after the document
	// closed (no spans remain, and any interactive input cell was also
	// closed).
	ErrClosed = errors.New("concat document is closed")

	// ErrGenericPositionAPI is returned by the concat-document facade's
	// OffsetAt/PositionAt to guard against silent misuse by generic
	// consumers written against a plain text-document interface: the
	// concat document has discontiguous real coordinates and those two
	// generic entry points can never answer correctly.
	ErrGenericPositionAPI = errors.New("use the explicit cell-aware position/offset variants: concat coordinates are discontiguous")

	// ErrInvalidRange indicates a requested range falls outside the
	// concat document's line count.
	ErrInvalidRange = errors.New("range out of bounds")

	// ErrEmptyWordPattern indicates a caller-supplied word-boundary regex
	// matched the empty string and was rejected.
	ErrEmptyWordPattern = errors.New("word-boundary pattern matches the empty string")
)

// MappingError wraps a failure encountered while translating an Edit's
// cell-local range into concat coordinates. The mutation engine logs these
// and continues with the remaining content changes rather than propagating
// them; MappingError exists so tests and callers that inspect the failure
// path get a typed, unwrapped cause.
type MappingError struct {
	CellID DocumentURI
	Op     string
	Err    error
}

// Error implements the error interface.
func (e *MappingError) Error() string {
	return fmt.Sprintf("concat: %s failed for cell %s: %v", e.Op, e.CellID, e.Err)
}

// Unwrap returns the underlying error.
func (e *MappingError) Unwrap() error {
	return e.Err
}
