package emit

// Event represents an observability event emitted during a run.
//
// Events provide insight into scheduler behavior: run start/end, node
// start/end, transition firing, sync arrivals and sync firings. A
// cancelled run is reported through the run_end event's status.
type Event struct {
	// RunID identifies the run that emitted this event.
	RunID string

	// Step is the sequential step number within the run (1-indexed).
	// Every event the scheduler emits, run-level ones included, takes the
	// next number.
	Step int

	// NodeID identifies which node emitted this event. Zero value for
	// run-level events.
	NodeID int

	// Msg is a short event name, e.g. "node_start", "sync_fired".
	Msg string

	// Meta carries event-specific structured data. Common keys:
	//   - "color": the token color involved
	//   - "error": true when the node's result carries an exception
	//   - "target": target node id chosen (transition_fired)
	//   - "from": source node id that arrived (sync_arrival)
	//   - "status": final run status (run_end)
	Meta map[string]interface{}
}
