// Package emit provides event emission for sequence engine runs: the
// scheduler's coordinator reports what it does through an Emitter, and the
// `logger` builtin variable is backed by the same interface (spec §3, §6).
package emit

import "context"

// Emitter receives observability events from a run.
//
// Implementations must not block the coordinator for long and must be
// safe to call from the coordinator goroutine only (the coordinator is
// the sole caller; Emitter implementations need not be safe for
// concurrent Emit calls from multiple goroutines unless documented
// otherwise, e.g. BufferedEmitter).
type Emitter interface {
	// Emit sends a single event. Must not panic.
	Emit(event Event)

	// EmitBatch sends multiple events in declared order. The coordinator
	// itself emits one event at a time through Emit.
	EmitBatch(ctx context.Context, events []Event) error

	// Flush ensures all buffered events reach their backend. Called at
	// run end.
	Flush(ctx context.Context) error
}
