package runner

import (
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/dshills/seqengine-go/emit"
	"github.com/dshills/seqengine-go/metrics"
	"github.com/dshills/seqengine-go/wrapper"
)

// config collects everything Options configure, mirroring the teacher's
// functional-options engine config (spec §4.9 "Options include:
// worker-pool size, default node timeout, log sink").
type config struct {
	workerPoolSize   int64
	defaultTimeout   time.Duration
	hardKillDeadline time.Duration
	emitter          emit.Emitter
	tracer           trace.Tracer
	metrics          *metrics.Metrics
	rateLimiter      *rate.Limiter
	wrappers         *wrapper.Registry
}

func defaultConfig() config {
	return config{
		workerPoolSize: 8,
	}
}

// Option configures a Runner at construction time.
type Option func(*config) error

// WithWorkerPoolSize bounds the number of Function nodes executing
// concurrently (spec §5 "a bounded pool of worker executors").
func WithWorkerPoolSize(n int) Option {
	return func(c *config) error {
		if n < 1 {
			n = 1
		}
		c.workerPoolSize = int64(n)
		return nil
	}
}

// WithDefaultTimeout sets the timeout applied to Function nodes that
// don't declare their own (spec §3 "optional timeout (duration)").
func WithDefaultTimeout(d time.Duration) Option {
	return func(c *config) error {
		c.defaultTimeout = d
		return nil
	}
}

// WithHardKillDeadline bounds how long the coordinator waits for
// in-flight Function invocations to drain after cancellation before
// abandoning them (spec §5 "configurable hard-kill deadline").
func WithHardKillDeadline(d time.Duration) Option {
	return func(c *config) error {
		c.hardKillDeadline = d
		return nil
	}
}

// WithEmitter sets the event sink backing the `logger` builtin and run
// observability (spec §3 "logger (opaque log sink handle)").
func WithEmitter(e emit.Emitter) Option {
	return func(c *config) error {
		c.emitter = e
		return nil
	}
}

// WithTracer adds an OpenTelemetry span per scheduler event, composed
// with any emitter already configured (spec §9 ambient observability —
// see SPEC_FULL.md §3).
func WithTracer(t trace.Tracer) Option {
	return func(c *config) error {
		c.tracer = t
		return nil
	}
}

// WithMetrics attaches a Prometheus metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) error {
		c.metrics = m
		return nil
	}
}

// WithRateLimit throttles Function node dispatch through limiter, an
// ambient resource control rather than a scoped-out feature.
func WithRateLimit(limiter *rate.Limiter) Option {
	return func(c *config) error {
		c.rateLimiter = limiter
		return nil
	}
}

// WithWrappers supplies the wrapper registry used to construct wrappers
// declared on Function nodes (spec §6 "Wrapper protocol").
func WithWrappers(reg *wrapper.Registry) Option {
	return func(c *config) error {
		c.wrappers = reg
		return nil
	}
}
