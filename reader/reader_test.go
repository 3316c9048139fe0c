package reader

import (
	"testing"

	"github.com/dshills/seqengine-go/graph"
)

func TestGraphBuilder_Build(t *testing.T) {
	b := NewGraphBuilder().
		AddNode(graph.Node{ID: 0, Kind: graph.Start}).
		AddNode(graph.Node{ID: 1, Kind: graph.Stop}).
		AddTransition(graph.Transition{SourceID: 0, TargetID: 1})

	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(g.StartNodes()) != 1 {
		t.Errorf("StartNodes() = %v, want one start node", g.StartNodes())
	}
}

func TestGraphBuilder_ImplementsGraphSource(t *testing.T) {
	b := NewGraphBuilder().AddNode(graph.Node{ID: 0, Kind: graph.Start})

	var src GraphSource = b
	if len(src.Nodes()) != 1 {
		t.Errorf("Nodes() = %v, want one node", src.Nodes())
	}
}

func TestGraphBuilder_NodesReturnsDefensiveCopy(t *testing.T) {
	b := NewGraphBuilder().AddNode(graph.Node{ID: 0, Kind: graph.Start})

	nodes := b.Nodes()
	nodes[0] = graph.Node{ID: 999, Kind: graph.Stop}

	if b.Nodes()[0].ID != 0 {
		t.Error("mutating the slice returned by Nodes() should not affect the builder")
	}
}
