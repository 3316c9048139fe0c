package expr

import (
	"testing"

	"github.com/dshills/seqengine-go/value"
	"github.com/dshills/seqengine-go/vars"
)

func TestEvaluate_Arithmetic(t *testing.T) {
	s := vars.New(map[string]any{"x": 3, "y": 4}, nil)
	env := s.Snapshot()

	got, err := Evaluate("x + y * 2", env)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != 11 {
		t.Errorf("got %v, want 11", got)
	}
}

func TestEvaluate_UndefinedNameErrors(t *testing.T) {
	s := vars.New(nil, nil)
	env := s.Snapshot()

	_, err := Evaluate("missing + 1", env)
	if err == nil {
		t.Fatal("expected EvalError for undefined name, got nil")
	}
	if _, ok := err.(*EvalError); !ok {
		t.Errorf("error type = %T, want *EvalError", err)
	}
}

func TestEvaluateBool_RequiresBoolean(t *testing.T) {
	s := vars.New(map[string]any{"n": 5}, nil)
	env := s.Snapshot()

	if _, err := EvaluateBool("n", env); err == nil {
		t.Error("EvaluateBool on a non-bool result should error")
	}

	ok, err := EvaluateBool("n > 3", env)
	if err != nil {
		t.Fatalf("EvaluateBool: %v", err)
	}
	if !ok {
		t.Error("n > 3 should be true")
	}
}

func TestEvaluate_ResultsBuiltin(t *testing.T) {
	s := vars.New(nil, nil)
	s.SetResult(value.Result{NID: 1, Returned: 42})
	s.SetResult(value.Result{NID: 2, Exception: &value.ExceptionInfo{Function: &value.ErrInfo{Name: "Boom"}}})

	env := s.Snapshot()

	got, err := Evaluate("results[1].returned", env)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != 42 {
		t.Errorf("results[1].returned = %v, want 42", got)
	}

	name, err := Evaluate("results[2].exception.function.name", env)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if name != "Boom" {
		t.Errorf("results[2].exception.function.name = %v, want Boom", name)
	}
}

func TestEvaluate_AbsentExceptionComparesEqualToNil(t *testing.T) {
	s := vars.New(nil, nil)
	s.SetResult(value.Result{NID: 1, Returned: "ok"})
	env := s.Snapshot()

	got, err := Evaluate("results[1].exception == nil", env)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != true {
		t.Error("a Result with no exception must compare equal to nil, not a typed-nil map")
	}
}

func TestEvaluate_WrappersBuiltin(t *testing.T) {
	s := vars.New(nil, nil)
	env := s.Snapshot().WithWrappers(map[string]any{"cache": "hit"})

	got, err := Evaluate(`wrappers["cache"]`, env)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != "hit" {
		t.Errorf("wrappers[cache] = %v, want hit", got)
	}
}

func TestEvaluate_JSONBuiltins(t *testing.T) {
	s := vars.New(map[string]any{"payload": `{"name":"a"}`}, nil)
	env := s.Snapshot()

	got, err := Evaluate(`jsonGet(payload, "name")`, env)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != "a" {
		t.Errorf("jsonGet result = %v, want a", got)
	}

	updated, err := Evaluate(`jsonSet(payload, "name", "b")`, env)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if updated != `{"name":"b"}` {
		t.Errorf("jsonSet result = %v, want {\"name\":\"b\"}", updated)
	}
}

func TestCompile_ReusableAcrossEnvironments(t *testing.T) {
	prg, err := Compile("n * 2")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	first := vars.New(map[string]any{"n": 2}, nil).Snapshot()
	second := vars.New(map[string]any{"n": 5}, nil).Snapshot()

	got1, err := prg.Run(first)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got1 != 4 {
		t.Errorf("got %v, want 4", got1)
	}

	got2, err := prg.Run(second)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got2 != 10 {
		t.Errorf("got %v, want 10", got2)
	}
}
