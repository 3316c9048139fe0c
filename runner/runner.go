// Package runner assembles a graph, a function registry, and a set of
// options into a ready-to-run Scheduler, and offers both a blocking and
// an asynchronous entry point (spec §4.9 "Public surface (conceptual)").
package runner

import (
	"context"
	"sync"

	"github.com/dshills/seqengine-go/function"
	"github.com/dshills/seqengine-go/graph"
	"github.com/dshills/seqengine-go/sched"
)

// Runner is a reusable launcher for one graph: each call to Run or
// RunAsync starts an independent Scheduler over the same graph and
// constants.
type Runner struct {
	g         *graph.Graph
	functions function.Registry
	constants map[string]any
	cfg       config
}

// New builds a Runner. g must already be validated (graph.Build returns
// a *graph.Graph only on success).
func New(g *graph.Graph, functions function.Registry, constants map[string]any, opts ...Option) (*Runner, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.tracer != nil {
		cfg.emitter = withTracing(cfg.emitter, cfg.tracer)
	}
	if cfg.rateLimiter != nil {
		functions = rateLimited(functions, cfg.rateLimiter)
	}
	return &Runner{g: g, functions: functions, constants: constants, cfg: cfg}, nil
}

func (r *Runner) schedConfig(runID string) sched.Config {
	return sched.Config{
		Graph:            r.g,
		Functions:        r.functions,
		Wrappers:         r.cfg.wrappers,
		Constants:        r.constants,
		Emitter:          r.cfg.emitter,
		Metrics:          r.cfg.metrics,
		WorkerPoolSize:   r.cfg.workerPoolSize,
		DefaultTimeout:   r.cfg.defaultTimeout,
		HardKillDeadline: r.cfg.hardKillDeadline,
		RunID:            runID,
	}
}

// Run executes the graph to termination and blocks until it does (spec
// §4.9 `run(ctx) -> RunOutcome`). runID identifies the run in emitted
// events and metrics.
func (r *Runner) Run(ctx context.Context, runID string) sched.Outcome {
	s := sched.New(r.schedConfig(runID))
	return s.Run(ctx)
}

// RunAsync starts the run in a background goroutine and returns a Handle
// for observing or cancelling it (spec §4.9 "async variant with
// cancel()").
func (r *Runner) RunAsync(ctx context.Context, runID string) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		outcome := r.Run(ctx, runID)
		h.mu.Lock()
		h.outcome = &outcome
		h.mu.Unlock()
	}()
	return h
}

// Handle observes or cancels a run started with RunAsync.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	outcome *sched.Outcome
}

// Cancel requests cooperative cancellation; the run continues draining
// in-flight Function nodes up to the configured hard-kill deadline
// (spec §5).
func (h *Handle) Cancel() {
	h.cancel()
}

// Wait blocks until the run finishes and returns its Outcome.
func (h *Handle) Wait() sched.Outcome {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return *h.outcome
}

// Done reports whether the run has finished.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Status returns the Outcome observed so far, or false if the run
// hasn't finished yet.
func (h *Handle) Status() (sched.Outcome, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.outcome == nil {
		return sched.Outcome{}, false
	}
	return *h.outcome, true
}
