// Package dispatch delivers events to handlers; the concat engine uses it to
// fan each outbound change event out to its listeners.
//
// The dispatch package implements synchronous event delivery with panic
// recovery, context support, and configurable timeouts.
//
// # Dispatchers
//
//   - SyncDispatcher: Executes handlers synchronously in the caller's goroutine.
//     The mutation engine applies Open/Close/Edit/Refresh serially with no
//     background goroutines, so this is the only dispatcher this module uses.
//
// # Panic Recovery
//
// All dispatchers recover from panics in handlers, preventing a misbehaving
// handler from crashing the host process. Panics are reported via a
// configurable PanicHandler callback.
//
// # Context Support
//
// Dispatchers respect context cancellation and deadlines. If a context is
// already done before a handler starts, the handler is skipped and the
// result carries context.Canceled or context.DeadlineExceeded. A context
// that ends while a handler runs has that effect only if the handler
// itself returns ctx.Err().
//
// # Usage
//
// Synchronous dispatch:
//
//	dispatcher := dispatch.NewSyncDispatcher()
//	result := dispatcher.Dispatch(ctx, event, handler)
//	if !result.IsSuccess() {
//	    // Handle error or panic
//	}
//
// With panic handler:
//
//	dispatcher := dispatch.NewSyncDispatcher(
//	    dispatch.WithPanicHandler(func(event any, err any, stack []byte) {
//	        log.Printf("panic in handler: %v\n%s", err, stack)
//	    }),
//	)
//
// # Result Handling
//
// The Result type captures the outcome of handler execution including
// success/failure status, error details, execution duration, and panic
// information if applicable.
package dispatch
