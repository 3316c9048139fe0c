package demo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/seqengine-go/function"
	"github.com/dshills/seqengine-go/graph"
	"github.com/dshills/seqengine-go/reader"
)

// sampleGraph builds a small graph exercising a split/sync pair around
// two concurrent Function nodes, followed by a Variable node and a Test
// node, so a single demo run touches most of the scheduler.
//
//	1 Start -> 2 ParallelSplit -> {3 Function "double", 4 Function "square"}
//	3,4 -> 5 ParallelSync -> 6 Variable(total) -> 7 Function(test: total>0) -> 8 Stop
func sampleGraph() (*graph.Graph, function.Registry, map[string]any, error) {
	b := reader.NewGraphBuilder()

	b.AddNode(graph.Node{ID: 1, Kind: graph.Start, Name: "start"})
	b.AddNode(graph.Node{ID: 2, Kind: graph.ParallelSplit, Name: "fan_out"})
	b.AddNode(graph.Node{
		ID: 3, Kind: graph.Function, Name: "double",
		FunctionName: "double", Args: map[string]string{"x": "seed"}, Return: "doubled",
		Timeout: time.Second,
	})
	b.AddNode(graph.Node{
		ID: 4, Kind: graph.Function, Name: "square",
		FunctionName: "square", Args: map[string]string{"x": "seed"}, Return: "squared",
		Timeout: time.Second,
	})
	b.AddNode(graph.Node{ID: 5, Kind: graph.ParallelSync, Name: "fan_in"})
	b.AddNode(graph.Node{
		ID: 6, Kind: graph.Variable, Name: "combine",
		Assignments: []graph.Assignment{{Name: "total", Expr: "doubled + squared"}},
	})
	b.AddNode(graph.Node{
		ID: 7, Kind: graph.Function, Name: "check_total",
		FunctionName: "assertPositive", Args: map[string]string{"value": "total"},
		IsTest: true, Timeout: time.Second,
	})
	b.AddNode(graph.Node{ID: 8, Kind: graph.Stop, Name: "stop"})

	b.AddTransition(graph.Transition{SourceID: 1, TargetID: 2})
	b.AddTransition(graph.Transition{SourceID: 2, TargetID: 3})
	b.AddTransition(graph.Transition{SourceID: 2, TargetID: 4})
	b.AddTransition(graph.Transition{SourceID: 3, TargetID: 5})
	b.AddTransition(graph.Transition{SourceID: 4, TargetID: 5})
	b.AddTransition(graph.Transition{SourceID: 5, TargetID: 6})
	b.AddTransition(graph.Transition{SourceID: 6, TargetID: 7})
	b.AddTransition(graph.Transition{SourceID: 7, TargetID: 8})

	g, err := b.Build()
	if err != nil {
		return nil, nil, nil, err
	}

	functions := function.NewMapRegistry(map[string]function.Function{
		"double": function.FunctionFunc(func(_ context.Context, args map[string]any) (any, error) {
			x, _ := args["x"].(int)
			return x * 2, nil
		}),
		"square": function.FunctionFunc(func(_ context.Context, args map[string]any) (any, error) {
			x, _ := args["x"].(int)
			return x * x, nil
		}),
		"assertPositive": function.FunctionFunc(func(_ context.Context, args map[string]any) (any, error) {
			v, _ := args["value"].(int)
			if v <= 0 {
				return nil, &function.CallError{Name: "AssertionFailed", Args: map[string]any{"value": v}, Err: errors.New("value not positive")}
			}
			return fmt.Sprintf("ok: %d", v), nil
		}),
	})

	constants := map[string]any{"seed": 3}

	return g, functions, constants, nil
}
