package graph

import (
	"errors"
	"testing"
)

func TestBuild_Valid(t *testing.T) {
	nodes := []Node{
		{ID: 1, Kind: Start},
		{ID: 2, Kind: Function, FunctionName: "f"},
		{ID: 3, Kind: Stop},
	}
	transitions := []Transition{
		{SourceID: 1, TargetID: 2},
		{SourceID: 2, TargetID: 3},
	}

	g, err := Build(nodes, transitions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := g.StartNodes(); len(got) != 1 || got[0] != 1 {
		t.Errorf("StartNodes() = %v, want [1]", got)
	}
	out := g.Outgoing(1)
	if len(out) != 1 || out[0].TargetID != 2 {
		t.Errorf("Outgoing(1) = %v, want one transition to 2", out)
	}
}

func TestBuild_Invariants(t *testing.T) {
	tests := []struct {
		name        string
		nodes       []Node
		transitions []Transition
		wantCode    string
	}{
		{
			name:     "duplicate node id",
			nodes:    []Node{{ID: 1, Kind: Start}, {ID: 1, Kind: Stop}},
			wantCode: "DUPLICATE_NODE",
		},
		{
			name:        "dangling target",
			nodes:       []Node{{ID: 1, Kind: Start}, {ID: 2, Kind: Stop}},
			transitions: []Transition{{SourceID: 1, TargetID: 99}},
			wantCode:    "UNRESOLVED_TARGET",
		},
		{
			name:        "missing source",
			nodes:       []Node{{ID: 1, Kind: Start}, {ID: 2, Kind: Stop}},
			transitions: []Transition{{SourceID: 99, TargetID: 2}},
			wantCode:    "UNRESOLVED_SOURCE",
		},
		{
			name:  "no start node",
			nodes: []Node{{ID: 1, Kind: Stop}},
			wantCode: "NO_START_NODE",
		},
		{
			name:     "no stop node",
			nodes:    []Node{{ID: 1, Kind: Start}, {ID: 2, Kind: Function, FunctionName: "f"}},
			transitions: []Transition{{SourceID: 1, TargetID: 2}, {SourceID: 2, TargetID: 2}},
			wantCode: "NO_STOP_NODE",
		},
		{
			name:        "incoming edge to start",
			nodes:       []Node{{ID: 1, Kind: Start}, {ID: 2, Kind: Stop}},
			transitions: []Transition{{SourceID: 1, TargetID: 2}, {SourceID: 2, TargetID: 1}},
			wantCode:    "EDGE_INTO_START",
		},
		{
			name:     "non-stop node with no outgoing transition",
			nodes:    []Node{{ID: 1, Kind: Start}, {ID: 2, Kind: Function, FunctionName: "f"}, {ID: 3, Kind: Stop}},
			transitions: []Transition{{SourceID: 1, TargetID: 2}},
			wantCode: "NO_OUTGOING_TRANSITION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.nodes, tt.transitions)
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("expected *LoadError, got %T", err)
			}
			if le.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", le.Code, tt.wantCode)
			}
		})
	}
}

func TestExpectedArrivals(t *testing.T) {
	nodes := []Node{
		{ID: 1, Kind: Start},
		{ID: 2, Kind: ParallelSplit},
		{ID: 3, Kind: Function, FunctionName: "a"},
		{ID: 4, Kind: Function, FunctionName: "b"},
		{ID: 5, Kind: ParallelSync},
		{ID: 6, Kind: Stop},
	}
	transitions := []Transition{
		{SourceID: 1, TargetID: 2},
		{SourceID: 2, TargetID: 3},
		{SourceID: 2, TargetID: 4},
		{SourceID: 3, TargetID: 5},
		{SourceID: 4, TargetID: 5},
		{SourceID: 5, TargetID: 6},
	}

	g, err := Build(nodes, transitions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := g.ExpectedArrivals(5)
	if len(expected) != 2 || !expected[3] || !expected[4] {
		t.Errorf("ExpectedArrivals(5) = %v, want {3,4}", expected)
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{Start, "Start"},
		{Stop, "Stop"},
		{Function, "Function"},
		{Variable, "Variable"},
		{ParallelSplit, "ParallelSplit"},
		{ParallelSync, "ParallelSync"},
		{Kind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}
