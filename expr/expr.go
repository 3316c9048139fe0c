// Package expr implements the sequence engine's restricted expression
// language: transition conditions, argument bindings, and Variable node
// right-hand sides all go through Evaluate (spec §4.1).
//
// Rather than hand-rolling a parser, expressions are compiled and run by
// github.com/expr-lang/expr, a sandboxed expression language with no
// host-interpreter escape hatch — exactly the "fixed grammar and safelist
// of operators and builtins" spec §9 calls for.
package expr

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/seqengine-go/value"
	"github.com/dshills/seqengine-go/vars"
)

// EvalError reports a failure to compile or evaluate an expression,
// carrying the source so the caller can attach it as node-failure
// context (spec §4.1 "EvalError with location metadata").
type EvalError struct {
	Expr string
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("expr: %q: %v", e.Expr, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

// Program is a compiled expression, reusable across evaluations with
// different environments (e.g. the same Variable node expression
// re-evaluated on every loop re-entry).
type Program struct {
	src string
	prg *vm.Program
}

// Compile parses expression source into a reusable Program.
func Compile(src string) (*Program, error) {
	prg, err := expr.Compile(src)
	if err != nil {
		return nil, &EvalError{Expr: src, Err: err}
	}
	return &Program{src: src, prg: prg}, nil
}

// Run evaluates a compiled Program against e.
func (p *Program) Run(e vars.Env) (any, error) {
	out, err := expr.Run(p.prg, buildEnv(e))
	if err != nil {
		return nil, &EvalError{Expr: p.src, Err: err}
	}
	return out, nil
}

// Evaluate compiles and runs src against e in one step (spec §4.1
// contract: `evaluate(expr, env) → Value | EvalError`).
func Evaluate(src string, e vars.Env) (any, error) {
	out, err := expr.Eval(src, buildEnv(e))
	if err != nil {
		return nil, &EvalError{Expr: src, Err: err}
	}
	return out, nil
}

// EvaluateBool evaluates src and requires a boolean result, as transition
// conditions do (spec §4.1 "(a) transition conditions (must yield
// boolean)"). An absent condition is treated as always-true by the
// caller, not by this function.
func EvaluateBool(src string, e vars.Env) (bool, error) {
	out, err := Evaluate(src, e)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, &EvalError{Expr: src, Err: fmt.Errorf("expected boolean, got %T", out)}
	}
	return b, nil
}

// buildEnv flattens a vars.Env snapshot into the map expr-lang resolves
// identifiers against, applying the precedence in spec §4.1: builtins
// shadow constants and on-the-fly names, which were already merged by
// vars.Env.Names with constants winning over on-the-fly.
func buildEnv(e vars.Env) map[string]any {
	out := e.Names()
	out["jsonGet"] = jsonGet
	out["jsonSet"] = jsonSet
	out[vars.BuiltinResults] = resultsView(e.Results())
	out[vars.BuiltinLogger] = e.Logger()
	if w := e.Wrappers(); w != nil {
		out[vars.BuiltinWrappers] = w
	} else {
		out[vars.BuiltinWrappers] = map[string]any{}
	}
	return out
}

// resultsView renders the result registry the way expressions index it:
// results[nid].returned, .exception.function.name, .exception.wrappers.args,
// .nid (spec §6 "Result field access").
func resultsView(rs map[int]value.Result) map[int]map[string]any {
	out := make(map[int]map[string]any, len(rs))
	for id, r := range rs {
		out[id] = map[string]any{
			"nid":       r.NID,
			"returned":  r.Returned,
			"exception": exceptionView(r.Exception),
		}
	}
	return out
}

// exceptionView returns any, not map[string]any: a typed-nil map boxed
// into an interface value does not compare equal to the untyped `nil` a
// condition like `results[1].exception == nil` expects, so the absent
// case must return a true nil interface.
func exceptionView(ex *value.ExceptionInfo) any {
	if ex == nil {
		return nil
	}
	return map[string]any{
		"function": errInfoView(ex.Function),
		"wrappers": errInfoView(ex.Wrappers),
	}
}

func errInfoView(ei *value.ErrInfo) any {
	if ei == nil {
		return nil
	}
	return map[string]any{
		"name": ei.Name,
		"args": ei.Args,
	}
}

// jsonGet is a safelisted builtin for reaching into a JSON string a
// Function node returned without deserializing it into the variable
// store (spec §4.1 "a small set of safe builtin calls").
func jsonGet(json, path string) any {
	r := gjson.Get(json, path)
	if !r.Exists() {
		return nil
	}
	return r.Value()
}

// jsonSet returns json with path set to value, used when a Variable node
// needs to build up a JSON payload expression incrementally.
func jsonSet(json, path string, value any) string {
	out, err := sjson.Set(json, path, value)
	if err != nil {
		return json
	}
	return out
}
