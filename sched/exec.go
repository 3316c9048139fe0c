package sched

import (
	"context"
	"time"

	"github.com/dshills/seqengine-go/expr"
	"github.com/dshills/seqengine-go/function"
	"github.com/dshills/seqengine-go/graph"
	"github.com/dshills/seqengine-go/token"
	"github.com/dshills/seqengine-go/value"
	"github.com/dshills/seqengine-go/vars"
)

// dispatch processes one ready token (spec §4.8 step 2): Start/Variable/
// ParallelSplit/ParallelSync execute synchronously on the coordinator
// since they never invoke user code; Function is handed to the worker
// pool.
func (s *Scheduler) dispatch(ctx context.Context, tok token.Token) {
	node, ok := s.g.Node(tok.NodeID)
	if !ok {
		s.setFatal(&RunError{Kind: "InternalError", Msg: "token references unknown node"})
		return
	}

	switch node.Kind {
	case graph.Start:
		s.emit(node.ID, "node_start", nil)
		s.fireSingle(tok, node)
	case graph.Stop:
		s.emit(node.ID, "node_end", nil)
		// token consumed, no outgoing transitions (spec §4.6)
	case graph.Variable:
		s.emit(node.ID, "node_start", nil)
		s.runVariable(tok, node)
	case graph.ParallelSplit:
		s.emit(node.ID, "node_start", nil)
		s.runSplit(tok, node)
	case graph.ParallelSync:
		s.runSync(tok, node)
	case graph.Function:
		s.emit(node.ID, "node_start", map[string]any{"color": int64(tok.Current())})
		s.inFlight++
		s.reportInFlight()
		go s.runFunction(ctx, tok, node)
	}
}

// fireSingle evaluates node's outgoing transitions in declared order and
// fires the first whose condition is true, producing a token at its
// target carrying tok's color stack (spec §4.8 step 3, §3 "Transitions of
// a single node are evaluated in declared order"). Zero true transitions
// on a non-split node is fatal (spec §7 NoTransitionFired).
func (s *Scheduler) fireSingle(tok token.Token, node graph.Node) {
	env := s.store.Snapshot()
	for _, t := range s.g.Outgoing(node.ID) {
		ok, err := conditionTrue(t.Condition, env)
		if err != nil {
			s.setFatal(&RunError{Kind: "Eval", Msg: "transition condition", Err: err})
			return
		}
		if ok {
			s.emit(node.ID, "transition_fired", map[string]any{"target": t.TargetID})
			s.enqueue(tok.At(t.TargetID))
			return
		}
	}
	s.setFatal(&RunError{Kind: "NoTransitionFired", Msg: nodeRef(node)})
}

func conditionTrue(cond string, env vars.Env) (bool, error) {
	if cond == "" {
		return true, nil
	}
	return expr.EvaluateBool(cond, env)
}

func nodeRef(node graph.Node) string {
	if node.Name != "" {
		return node.Name
	}
	return node.Kind.String()
}

// runVariable evaluates each assignment in declared order, writing
// through SetOnTheFly so later assignments in the same node see earlier
// ones (spec §4.5).
func (s *Scheduler) runVariable(tok token.Token, node graph.Node) {
	for _, a := range node.Assignments {
		env := s.store.Snapshot()
		v, err := expr.Evaluate(a.Expr, env)
		if err != nil {
			s.setFatal(&RunError{Kind: "Eval", Msg: "variable node " + nodeRef(node) + " assignment " + a.Name, Err: err})
			return
		}
		if err := s.store.SetOnTheFly(a.Name, v); err != nil {
			s.setFatal(&RunError{Kind: "ProtectedWrite", Msg: a.Name, Err: err})
			return
		}
	}
	s.emit(node.ID, "node_end", nil)
	s.fireSingle(tok, node)
}

// runSplit implements spec §4.7 split semantics: evaluate every outgoing
// condition, mint one fresh color for this firing, and emit a token on
// every transition that evaluated true.
func (s *Scheduler) runSplit(tok token.Token, node graph.Node) {
	env := s.store.Snapshot()
	c := s.mintColor()
	for _, t := range s.g.Outgoing(node.ID) {
		ok, err := conditionTrue(t.Condition, env)
		if err != nil {
			s.setFatal(&RunError{Kind: "Eval", Msg: "split condition", Err: err})
			return
		}
		if ok {
			s.enqueue(tok.Pushed(t.TargetID, c))
		}
	}
	s.emit(node.ID, "node_end", map[string]any{"color": int64(c)})
}

// runSync implements spec §4.7 sync semantics: accumulate arrivals per
// color, firing once the dynamic arrival set equals the statically
// computed expected set.
func (s *Scheduler) runSync(tok token.Token, node graph.Node) {
	expected := s.g.ExpectedArrivals(node.ID)
	color := tok.Current()

	byColor, ok := s.syncArrivals[node.ID]
	if !ok {
		byColor = make(map[token.Color]map[int]bool)
		s.syncArrivals[node.ID] = byColor
	}
	arrived, ok := byColor[color]
	if !ok {
		arrived = make(map[int]bool)
		byColor[color] = arrived
	}
	arrived[tok.Via] = true

	s.emit(node.ID, "sync_arrival", map[string]any{"color": int64(color), "from": tok.Via})
	s.reportActiveColors()

	if !arrivalSetComplete(arrived, expected) {
		return
	}

	delete(byColor, color)
	if len(byColor) == 0 {
		delete(s.syncArrivals, node.ID)
	}
	s.reportActiveColors()

	s.emit(node.ID, "sync_fired", map[string]any{"color": int64(color)})
	// Firing restores the pre-split color (spec §4.7 "On firing").
	s.fireSingle(tok.Popped(node.ID), node)
}

func arrivalSetComplete(arrived, expected map[int]bool) bool {
	if len(arrived) != len(expected) {
		return false
	}
	for id := range expected {
		if !arrived[id] {
			return false
		}
	}
	return true
}

func (s *Scheduler) reportActiveColors() {
	if s.cfg.Metrics == nil {
		return
	}
	total := 0
	for _, byColor := range s.syncArrivals {
		total += len(byColor)
	}
	s.cfg.Metrics.SetActiveColors(total)
}

// applyCompletion commits a Function node's Result and fires its
// transition (spec §4.4 steps 7-8, §4.8 step 3).
func (s *Scheduler) applyCompletion(c completion) {
	node, _ := s.g.Node(c.tok.NodeID)

	s.store.SetResult(c.res)
	if node.Return != "" {
		_ = s.store.SetOnTheFly(node.Return, c.res.Returned)
	}

	status := "success"
	if c.res.Failed() {
		status = "error"
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.ObserveNodeLatency(s.cfg.RunID, node.ID, c.duration, status)
	}

	if node.IsTest && c.res.Failed() {
		s.failed = true
		s.failedTests = append(s.failedTests, c.res)
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.IncTestFailure(s.cfg.RunID, node.ID)
		}
	}

	meta := map[string]any{}
	if c.res.Failed() {
		meta["error"] = true
	}
	s.emit(node.ID, "node_end", meta)

	s.fireSingle(c.tok, node)
}

// runFunction executes spec §4.4's Function node sequence in a worker
// goroutine, bounded by the scheduler's semaphore. It sends its result on
// s.completions; it never mutates the store directly (spec §5
// "Worker-produced objects ... cross into the store by copy").
func (s *Scheduler) runFunction(ctx context.Context, tok token.Token, node graph.Node) {
	_ = s.sem.Acquire(ctx, 1)
	defer s.sem.Release(1)

	snapshot := s.store.Snapshot()
	start := time.Now()
	res := s.invoke(ctx, snapshot, node)
	res.Returned = deepCopy(res.Returned)
	c := completion{tok: tok, res: res, duration: time.Since(start)}

	select {
	case s.completions <- c:
	case <-ctx.Done():
		// Coordinator is draining; still try a non-blocking delivery so
		// the result isn't silently lost if it's about to receive.
		select {
		case s.completions <- c:
		default:
		}
	}
}

// invoke runs spec §4.4 steps 1-6 against an immutable environment
// snapshot, returning the committed Result.
func (s *Scheduler) invoke(ctx context.Context, snapshot vars.Env, node graph.Node) value.Result {
	type activeWrapper struct {
		name string
		w    wrapperHandle
	}

	handles := make([]activeWrapper, 0, len(node.Wrappers))

	var wrapperErr *value.ErrInfo
	var functionErr *value.ErrInfo

	// Step 1: construct every wrapper from its evaluated argument map.
	for _, spec := range node.Wrappers {
		args, err := evalArgs(spec.Args, snapshot)
		if err != nil {
			wrapperErr = &value.ErrInfo{Name: "EvalError", Args: map[string]any{"wrapper": spec.Name, "error": err.Error()}}
			break
		}
		w, err := s.cfg.Wrappers.New(spec.Name, args)
		if err != nil {
			wrapperErr = &value.ErrInfo{Name: "WrapperConstructError", Args: map[string]any{"wrapper": spec.Name, "error": err.Error()}}
			break
		}
		handles = append(handles, activeWrapper{name: spec.Name, w: w})
	}

	wrappersLocal := make(map[string]any, len(handles))
	completed := make([]activeWrapper, 0, len(handles))

	// Step 2: pre, in declared order; stop at the first failure.
	if wrapperErr == nil {
		for _, h := range handles {
			v, err := h.w.Pre(ctx)
			if err != nil {
				wrapperErr = &value.ErrInfo{Name: "WrapperError", Args: map[string]any{"wrapper": h.name, "phase": "pre", "error": err.Error()}}
				break
			}
			wrappersLocal[h.name] = v
			completed = append(completed, h)
		}
	}

	var returned any

	if wrapperErr == nil {
		// Step 3-4: augment the environment with wrapper-local bindings,
		// evaluate the function's own argument bindings, and invoke it.
		augmented := snapshot.WithWrappers(wrappersLocal)
		args, err := evalArgs(node.Args, augmented)
		if err != nil {
			functionErr = &value.ErrInfo{Name: "EvalError", Args: map[string]any{"error": err.Error()}}
		} else {
			returned, functionErr = s.callFunction(ctx, node, deepCopyArgs(args))
		}
	}

	// Step 5: post, in reverse declared order, only for wrappers whose
	// pre completed; the first wrapper error (from pre or post) wins.
	for i := len(completed) - 1; i >= 0; i-- {
		h := completed[i]
		if err := h.w.Post(ctx); err != nil && wrapperErr == nil {
			wrapperErr = &value.ErrInfo{Name: "WrapperError", Args: map[string]any{"wrapper": h.name, "phase": "post", "error": err.Error()}}
		}
	}

	var exception *value.ExceptionInfo
	if functionErr != nil || wrapperErr != nil {
		exception = &value.ExceptionInfo{Function: functionErr, Wrappers: wrapperErr}
	}

	return value.Result{NID: node.ID, Returned: returned, Exception: exception}
}

// wrapperHandle is the subset of wrapper.Wrapper invoke needs; declared
// locally so tests can stub it without importing the wrapper package.
type wrapperHandle interface {
	Pre(ctx context.Context) (any, error)
	Post(ctx context.Context) error
}

func evalArgs(bindings map[string]string, env vars.Env) (map[string]any, error) {
	out := make(map[string]any, len(bindings))
	for name, src := range bindings {
		v, err := expr.Evaluate(src, env)
		if err != nil {
			return out, err
		}
		out[name] = v
	}
	return out, nil
}

// callFunction invokes the node's registered function, enforcing its
// timeout if present (spec §4.4 step 4).
func (s *Scheduler) callFunction(ctx context.Context, node graph.Node, args map[string]any) (any, *value.ErrInfo) {
	fn, ok := s.cfg.Functions.Lookup(node.FunctionName)
	if !ok {
		return nil, &value.ErrInfo{Name: "UnknownFunction", Args: map[string]any{"name": node.FunctionName}}
	}

	timeout := node.Timeout
	if timeout <= 0 {
		timeout = s.cfg.DefaultTimeout
	}

	callCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type outcome struct {
		v   any
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn.Call(callCtx, args)
		done <- outcome{v: v, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			if s.cfg.Metrics != nil {
				s.cfg.Metrics.IncNodeError(s.cfg.RunID, node.ID, "function")
			}
			if ce, ok := o.err.(*function.CallError); ok {
				return nil, &value.ErrInfo{Name: ce.Name, Args: ce.Args}
			}
			return nil, &value.ErrInfo{Name: "Error", Args: map[string]any{"message": o.err.Error()}}
		}
		return o.v, nil
	case <-callCtx.Done():
		if callCtx.Err() == context.DeadlineExceeded {
			if s.cfg.Metrics != nil {
				s.cfg.Metrics.IncTimeout(s.cfg.RunID, node.ID)
			}
			return nil, &value.ErrInfo{Name: "Timeout", Args: map[string]any{"timeout_ms": timeout.Milliseconds()}}
		}
		return nil, &value.ErrInfo{Name: "Cancelled", Args: nil}
	}
}

// deepCopyArgs clones maps/slices so the user function cannot mutate
// shared sequence state by reference (spec §4.4 "Argument isolation").
func deepCopyArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
