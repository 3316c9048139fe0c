// Package graph defines the engine's in-memory graph model: nodes,
// transitions, and the invariants enforced at load time (spec §3, §4.2).
// A Graph is built once by Build and is read-only thereafter — the
// engine never mutates it.
package graph

import "time"

// Kind identifies a node's behavior (spec §3).
type Kind int

const (
	Start Kind = iota
	Stop
	Function
	Variable
	ParallelSplit
	ParallelSync
)

func (k Kind) String() string {
	switch k {
	case Start:
		return "Start"
	case Stop:
		return "Stop"
	case Function:
		return "Function"
	case Variable:
		return "Variable"
	case ParallelSplit:
		return "ParallelSplit"
	case ParallelSync:
		return "ParallelSync"
	default:
		return "Unknown"
	}
}

// WrapperSpec names one wrapper declared on a Function node, with its
// argument bindings as unevaluated expression strings (spec §3, §4.4
// step 1).
type WrapperSpec struct {
	Name string
	Args map[string]string
}

// Assignment is one ordered right-hand-side expression of a Variable node
// (spec §4.5: "declared order", "each assignment is visible to
// subsequent expressions in the same node").
type Assignment struct {
	Name string
	Expr string
}

// Node is an immutable vertex in the graph (spec §3). Fields not relevant
// to Kind are left zero.
type Node struct {
	ID   int
	Kind Kind
	Name string

	// Function fields.
	FunctionName string
	Args         map[string]string
	Wrappers     []WrapperSpec
	Timeout      time.Duration // zero means "no node-level timeout"
	Return       string        // on-the-fly alias for the returned value, empty if none
	IsTest       bool

	// Variable fields.
	Assignments []Assignment
}
