// Package sched implements the engine's concurrent scheduler: the single
// coordinator that advances tokens through the graph, the bounded worker
// pool that executes Function nodes, and the colored fork/join protocol
// (spec §4.7, §4.8, §5).
package sched

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/dshills/seqengine-go/emit"
	"github.com/dshills/seqengine-go/function"
	"github.com/dshills/seqengine-go/graph"
	"github.com/dshills/seqengine-go/metrics"
	"github.com/dshills/seqengine-go/token"
	"github.com/dshills/seqengine-go/value"
	"github.com/dshills/seqengine-go/vars"
	"github.com/dshills/seqengine-go/wrapper"
)

// Status is the terminal state of a run (spec §4.9 RunOutcome.status).
type Status int

const (
	Completed Status = iota
	TestFailed
	Error
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "Completed"
	case TestFailed:
		return "TestFailed"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// Outcome is the result of running a graph to termination (spec §4.9).
type Outcome struct {
	Status      Status
	FailedTests []value.Result
	Fatal       error
}

// ExitCode maps Status to the CLI exit codes spec §6 suggests: 0 on
// Completed, 1 on TestFailed, 2 on fatal engine or user errors.
func (o Outcome) ExitCode() int {
	switch o.Status {
	case Completed:
		return 0
	case TestFailed:
		return 1
	default:
		return 2
	}
}

// RunError classifies a fatal run-ending error (spec §7 table: kinds with
// "Fatal run error" handling — NoTransitionFired, ProtectedWrite, and an
// Eval error arising in a context with no owning Result).
type RunError struct {
	Kind string
	Msg  string
	Err  error
}

func (e *RunError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sched: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("sched: %s: %s", e.Kind, e.Msg)
}

func (e *RunError) Unwrap() error { return e.Err }

// Config wires a Scheduler to its collaborators (spec §4.9 `new(graph,
// functions, constants?, options?)`). WorkerPoolSize, DefaultTimeout and
// HardKillDeadline are ambient resource controls (spec §5); zero values
// fall back to sensible defaults.
type Config struct {
	Graph            *graph.Graph
	Functions        function.Registry
	Wrappers         *wrapper.Registry
	Constants        map[string]any
	Emitter          emit.Emitter
	Metrics          *metrics.Metrics
	WorkerPoolSize   int64
	DefaultTimeout   time.Duration
	HardKillDeadline time.Duration
	RunID            string
}

// Scheduler runs one graph to termination. It is single-use: call Run
// once.
type Scheduler struct {
	cfg   Config
	g     *graph.Graph
	store *vars.Store
	sem   *semaphore.Weighted

	ready    []token.Token
	inFlight int
	nextStep int

	// syncArrivals[syncNodeID][color] is the set of source node ids that
	// have delivered a token under that color (spec §4.7).
	syncArrivals map[int]map[token.Color]map[int]bool
	nextColor    int64

	failed      bool
	failedTests []value.Result
	fatal       error

	completions chan completion
}

type completion struct {
	tok      token.Token
	res      value.Result
	duration time.Duration
}

// New constructs a Scheduler. Functions/Wrappers/Emitter/Metrics may be
// nil-equivalent zero values; New fills in the required defaults.
func New(cfg Config) *Scheduler {
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 8
	}
	if cfg.HardKillDeadline <= 0 {
		cfg.HardKillDeadline = 30 * time.Second
	}
	if cfg.Emitter == nil {
		cfg.Emitter = emit.NewNullEmitter()
	}
	if cfg.Wrappers == nil {
		cfg.Wrappers = wrapper.NewRegistry()
	}
	if cfg.Functions == nil {
		cfg.Functions = function.NewMapRegistry(nil)
	}
	return &Scheduler{
		cfg:          cfg,
		g:            cfg.Graph,
		store:        vars.New(cfg.Constants, cfg.Emitter),
		sem:          semaphore.NewWeighted(cfg.WorkerPoolSize),
		syncArrivals: make(map[int]map[token.Color]map[int]bool),
		nextColor:    1, // 0 is RootColor (spec §9)
		completions:  make(chan completion),
	}
}

// Run drives the graph to termination (spec §4.8 main loop). It blocks
// until the run completes, fails, or ctx is cancelled and the in-flight
// drain finishes (or the hard-kill deadline elapses).
func (s *Scheduler) Run(ctx context.Context) Outcome {
	for _, id := range s.g.StartNodes() {
		s.ready = append(s.ready, token.Root(id))
	}
	s.emit(0, "run_start", nil)

	cancelled := false
	var killTimer <-chan time.Time

	for len(s.ready) > 0 || s.inFlight > 0 {
		if !cancelled && s.fatal == nil && len(s.ready) > 0 {
			tok := s.ready[0]
			s.ready = s.ready[1:]
			s.reportQueueDepth()
			s.dispatch(ctx, tok)
			continue
		}

		if s.inFlight == 0 {
			break
		}

		if cancelled && killTimer == nil {
			timer := time.NewTimer(s.cfg.HardKillDeadline)
			defer timer.Stop()
			killTimer = timer.C
		}

		select {
		case c := <-s.completions:
			s.inFlight--
			s.reportInFlight()
			s.applyCompletion(c)
		case <-ctx.Done():
			cancelled = true
			s.ready = nil
		case <-killTimer:
			s.inFlight = 0
		}
	}

	s.emit(0, "run_end", map[string]any{"status": s.statusString(cancelled)})
	_ = s.cfg.Emitter.Flush(context.Background())

	return s.outcome(cancelled)
}

func (s *Scheduler) statusString(cancelled bool) string {
	switch {
	case cancelled:
		return "Cancelled"
	case s.fatal != nil:
		return "Error"
	case s.failed:
		return "TestFailed"
	default:
		return "Completed"
	}
}

func (s *Scheduler) outcome(cancelled bool) Outcome {
	switch {
	case s.fatal != nil:
		return Outcome{Status: Error, Fatal: s.fatal, FailedTests: s.failedTests}
	case s.failed:
		return Outcome{Status: TestFailed, FailedTests: s.failedTests}
	default:
		return Outcome{Status: Completed, FailedTests: s.failedTests}
	}
}

func (s *Scheduler) setFatal(err error) {
	if s.fatal == nil {
		s.fatal = err
	}
}

func (s *Scheduler) mintColor() token.Color {
	c := token.Color(s.nextColor)
	s.nextColor++
	return c
}

func (s *Scheduler) enqueue(t token.Token) {
	s.ready = append(s.ready, t)
}

func (s *Scheduler) emit(nodeID int, msg string, meta map[string]any) {
	s.nextStep++
	s.cfg.Emitter.Emit(emit.Event{RunID: s.cfg.RunID, Step: s.nextStep, NodeID: nodeID, Msg: msg, Meta: meta})
}

func (s *Scheduler) reportQueueDepth() {
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.SetReadyQueueDepth(len(s.ready))
	}
}

func (s *Scheduler) reportInFlight() {
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.SetInflightFunctions(s.inFlight)
	}
}
