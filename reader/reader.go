// Package reader defines the boundary between the engine and whatever
// produces a graph definition. The engine depends only on GraphSource;
// parsing a concrete file format into one is out of scope (spec §1
// "SequenceReader ... Out of scope for this spec").
package reader

import "github.com/dshills/seqengine-go/graph"

// GraphSource supplies the nodes and transitions of one sequence graph.
// A real implementation would parse a file format into these; this
// package provides only an in-memory GraphBuilder for tests and
// examples.
type GraphSource interface {
	Nodes() []graph.Node
	Transitions() []graph.Transition
}

// GraphBuilder accumulates nodes and transitions in memory and builds a
// validated graph.Graph from them, grounding tests and the demo CLI
// without a real file-format reader.
type GraphBuilder struct {
	nodes       []graph.Node
	transitions []graph.Transition
}

// NewGraphBuilder returns an empty GraphBuilder.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{}
}

// AddNode appends n and returns the builder for chaining.
func (b *GraphBuilder) AddNode(n graph.Node) *GraphBuilder {
	b.nodes = append(b.nodes, n)
	return b
}

// AddTransition appends t and returns the builder for chaining.
func (b *GraphBuilder) AddTransition(t graph.Transition) *GraphBuilder {
	b.transitions = append(b.transitions, t)
	return b
}

// Nodes implements GraphSource.
func (b *GraphBuilder) Nodes() []graph.Node {
	return append([]graph.Node(nil), b.nodes...)
}

// Transitions implements GraphSource.
func (b *GraphBuilder) Transitions() []graph.Transition {
	return append([]graph.Transition(nil), b.transitions...)
}

// Build validates and constructs the graph (spec §3 "built once and
// never mutated").
func (b *GraphBuilder) Build() (*graph.Graph, error) {
	return graph.Build(b.nodes, b.transitions)
}
