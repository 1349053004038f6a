// Package concat maintains a synthetic "concatenated" text document that
// virtually merges the source of multiple notebook cells, plus optional
// synthetic prelude/suppression fragments, into a single logical document a
// downstream language analyzer can treat as one file.
//
// # Architecture
//
// The package is organized around these core pieces:
//
//   - Span: ordered, contiguous substrings of the concat document,
//     each owned by one cell and tagged real or synthetic.
//   - Builder: pure function turning one cell's source into its span run.
//   - Engine: applies Open/Close/Edit/Refresh to the span list, keeping the
//     concat and real coordinate systems in lock-step, and emits outbound
//     change events.
//   - Mapper: bidirectional position/offset translation between concat and
//     cell-local coordinates.
//   - Document: a read-only facade over the current span list for line
//     lookup, text extraction, and word-range queries.
//
// # Quick Start
//
//	eng := concat.NewEngine(concat.DefaultConfig())
//	eng.Open(concat.DocumentURI("vscode-notebook-cell:///nb.ipynb#W0"), "print(1)\n", 1, false)
//	doc := eng.Document()
//	fmt.Println(doc.GetText(nil))
//
// # Concurrency
//
// The engine assumes serial event application and holds no locks: callers
// must serialize Open/Close/Edit/Refresh calls themselves and must not read
// a Document snapshot while a mutation is in flight.
//
// # Integration
//
// The engine is driven by whatever transport/message layer a host process
// uses to receive notebook cell lifecycle events; that transport, URI
// parsing, filesystem access, and the real word-boundary scanner are all
// treated as external collaborators and are out of this package's scope.
package concat
