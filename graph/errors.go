package graph

import "fmt"

// LoadError reports a graph invariant violation detected at Build time
// (spec §3 "Graph invariants (enforced at load)", spec §7 LoadError:
// "Surface before run starts; no run performed").
type LoadError struct {
	Code string
	Msg  string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("graph load: %s: %s", e.Code, e.Msg)
}

func duplicateNode(id int) error {
	return &LoadError{Code: "DUPLICATE_NODE", Msg: fmt.Sprintf("node id %d declared more than once", id)}
}

func danglingTarget(from, to int) error {
	return &LoadError{Code: "UNRESOLVED_TARGET", Msg: fmt.Sprintf("transition %d -> %d: target node %d does not exist", from, to, to)}
}

func missingSource(from, to int) error {
	return &LoadError{Code: "UNRESOLVED_SOURCE", Msg: fmt.Sprintf("transition %d -> %d: source node %d does not exist", from, to, from)}
}

var errNoStart = &LoadError{Code: "NO_START_NODE", Msg: "graph has no Start node"}

var errNoStop = &LoadError{Code: "NO_STOP_NODE", Msg: "graph has no Stop node"}

func incomingToStart(target int) error {
	return &LoadError{Code: "EDGE_INTO_START", Msg: fmt.Sprintf("node %d is a Start node but has an incoming transition", target)}
}

func noOutgoing(id int, kind Kind) error {
	return &LoadError{Code: "NO_OUTGOING_TRANSITION", Msg: fmt.Sprintf("node %d (%s) has no outgoing transitions", id, kind)}
}
