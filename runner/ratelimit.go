package runner

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/dshills/seqengine-go/function"
)

// rateLimited wraps reg so every Function call waits on limiter first, an
// ambient resource control over how fast Function nodes fire rather than
// a scheduling concern of the engine itself.
func rateLimited(reg function.Registry, limiter *rate.Limiter) function.Registry {
	return &rateLimitedRegistry{inner: reg, limiter: limiter}
}

type rateLimitedRegistry struct {
	inner   function.Registry
	limiter *rate.Limiter
}

func (r *rateLimitedRegistry) Lookup(name string) (function.Function, bool) {
	fn, ok := r.inner.Lookup(name)
	if !ok {
		return nil, false
	}
	return rateLimitedFunction{fn: fn, limiter: r.limiter}, true
}

type rateLimitedFunction struct {
	fn      function.Function
	limiter *rate.Limiter
}

func (f rateLimitedFunction) Call(ctx context.Context, args map[string]any) (any, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return f.fn.Call(ctx, args)
}
