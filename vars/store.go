// Package vars implements the sequence engine's variable store: the three
// namespaces an expression can read from, and the write discipline that
// keeps two of them engine-owned (spec §3, §4.3).
package vars

import (
	"fmt"

	"github.com/dshills/seqengine-go/emit"
	"github.com/dshills/seqengine-go/value"
)

// Builtin names are reserved; a Variable node may never assign to them
// (spec §3 "Built-ins ... Engine-writable only", spec §7 ProtectedWrite).
const (
	BuiltinResults  = "results"
	BuiltinLogger   = "logger"
	BuiltinWrappers = "wrappers"
)

// ProtectedWriteError is returned by SetOnTheFly when name collides with a
// builtin or a constant (spec §7 ProtectedWrite).
type ProtectedWriteError struct {
	Name string
}

func (e *ProtectedWriteError) Error() string {
	return fmt.Sprintf("vars: %q is a protected name and cannot be assigned by a Variable node", e.Name)
}

// Store holds the three namespaces for one run and enforces the write
// discipline described in spec §3 and §4.3. All mutating methods are
// meant to be called only from the scheduler's coordinator goroutine
// (spec §5 "single-writer by invariant").
type Store struct {
	results   map[int]value.Result
	logger    emit.Emitter
	constants map[string]any
	onTheFly  map[string]any

	// wrappersLocal holds wrapper pre-results published with
	// BindWrappersLocal and removed with ClearWrappersLocal (spec §4.4
	// step 3). The scheduler does not use it: it binds pre-results on a
	// worker's snapshot through Env.WithWrappers, so it stays nil in a run.
	wrappersLocal map[string]any
}

// New creates a Store seeded with constants (copied, then frozen for the
// life of the run per spec §3 "set once at runtime start") and a logger
// sink for the `logger` builtin.
func New(constants map[string]any, logger emit.Emitter) *Store {
	if logger == nil {
		logger = emit.NewNullEmitter()
	}
	frozen := make(map[string]any, len(constants))
	for k, v := range constants {
		frozen[k] = v
	}
	return &Store{
		results:   make(map[int]value.Result),
		logger:    logger,
		constants: frozen,
		onTheFly:  make(map[string]any),
	}
}

// Env is an immutable view over the store taken at one instant, handed to
// the expression evaluator (spec §4.1 `env`, spec §4.3 `snapshot()`).
// Lookup precedence is builtin > constant > on-the-fly > wrapper-local,
// matching spec §4.1 "first match wins".
type Env struct {
	results       map[int]value.Result
	logger        emit.Emitter
	constants     map[string]any
	onTheFly      map[string]any
	wrappersLocal map[string]any
}

// Snapshot returns an immutable view of the store for one expression
// evaluation (spec §4.3 "cheap immutable view"). The top-level maps are
// cloned so a snapshot handed to a worker goroutine for Function-node
// argument evaluation (spec §4.4) stays stable while the coordinator goes
// on mutating the live store concurrently (spec §5 "readers receive
// immutable snapshots").
func (s *Store) Snapshot() Env {
	return Env{
		results:       cloneMap(s.results),
		logger:        s.logger,
		constants:     s.constants, // frozen at New, never mutated after
		onTheFly:      cloneMap(s.onTheFly),
		wrappersLocal: cloneMap(s.wrappersLocal),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Lookup resolves name under the precedence in spec §4.1. The second
// return reports whether name was found in any namespace.
func (e Env) Lookup(name string) (any, bool) {
	switch name {
	case BuiltinResults:
		return e.results, true
	case BuiltinLogger:
		return e.logger, true
	case BuiltinWrappers:
		if e.wrappersLocal == nil {
			return map[string]any{}, true
		}
		return e.wrappersLocal, true
	}
	if v, ok := e.constants[name]; ok {
		return v, true
	}
	if v, ok := e.onTheFly[name]; ok {
		return v, true
	}
	return nil, false
}

// Result returns the stored Result for nid, if any.
func (e Env) Result(nid int) (value.Result, bool) {
	r, ok := e.results[nid]
	return r, ok
}

// Results returns the full result registry view.
func (e Env) Results() map[int]value.Result {
	return e.results
}

// Logger returns the logger builtin handle.
func (e Env) Logger() emit.Emitter {
	return e.logger
}

// Wrappers returns the current wrapper-local bindings. A snapshot taken
// from the Store with nothing bound holds an empty map; an Env only carries
// a Function node's pre-results after WithWrappers (spec §8 invariant 4).
func (e Env) Wrappers() map[string]any {
	return e.wrappersLocal
}

// WithWrappers returns a copy of e with the `wrappers` binding set to w,
// used to augment a worker's snapshot for one Function node invocation's
// argument evaluation without touching the shared store (spec §4.4 step
// 3).
func (e Env) WithWrappers(w map[string]any) Env {
	e.wrappersLocal = w
	return e
}

// Names returns every constant and on-the-fly name visible in e, with
// constants taking precedence over on-the-fly names of the same spelling
// (spec §4.1 lookup order). Builtin names are excluded; callers that need
// them use Results/Logger/Wrappers directly.
func (e Env) Names() map[string]any {
	out := make(map[string]any, len(e.constants)+len(e.onTheFly))
	for k, v := range e.onTheFly {
		out[k] = v
	}
	for k, v := range e.constants {
		out[k] = v
	}
	return out
}

// SetOnTheFly writes name into the on-the-fly namespace. It rejects
// builtin and constant names (spec §7 ProtectedWrite).
func (s *Store) SetOnTheFly(name string, v any) error {
	if isBuiltinName(name) {
		return &ProtectedWriteError{Name: name}
	}
	if _, ok := s.constants[name]; ok {
		return &ProtectedWriteError{Name: name}
	}
	s.onTheFly[name] = v
	return nil
}

func isBuiltinName(name string) bool {
	switch name {
	case BuiltinResults, BuiltinLogger, BuiltinWrappers:
		return true
	}
	return false
}

// SetResult overwrites the result slot for nid (spec §3 "overwritten in
// place on each node completion").
func (s *Store) SetResult(r value.Result) {
	s.results[r.NID] = r
}

// BindWrappersLocal publishes m as the `wrappers` environment binding for
// the duration of one Function node invocation (spec §4.4 step 3).
func (s *Store) BindWrappersLocal(m map[string]any) {
	s.wrappersLocal = m
}

// ClearWrappersLocal removes the `wrappers` binding once the invocation
// that published it has completed (spec §8 invariant 4: "not visible
// after the node completes").
func (s *Store) ClearWrappersLocal() {
	s.wrappersLocal = nil
}

// Logger returns the built-in log sink.
func (s *Store) Logger() emit.Emitter {
	return s.logger
}
