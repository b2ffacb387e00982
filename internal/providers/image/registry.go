package image

import (
	"context"

	"golang.org/x/time/rate"

	"mugshot/internal/modelreg"
)

// Registry maps registry models to their generators. Resolution happens once
// at the boundary; there is no substring routing anywhere downstream.
type Registry struct {
	generators map[modelreg.Model]Generator
	limiters   map[modelreg.Model]*rate.Limiter
}

// RegistryOptions carries the configured provider backends.
type RegistryOptions struct {
	Gemini    *GeminiProvider
	ByteDance *ByteDanceProvider
	Fal       *FalProvider
	// RequestsPerMinute throttles outbound calls per provider family.
	// Zero disables throttling.
	RequestsPerMinute int
}

// NewRegistry wires every supported model to a backend. Models without a
// configured backend stay unmapped and surface as provider errors at
// dispatch time rather than silently routing elsewhere.
func NewRegistry(opts RegistryOptions) *Registry {
	r := &Registry{
		generators: make(map[modelreg.Model]Generator),
		limiters:   make(map[modelreg.Model]*rate.Limiter),
	}

	newLimiter := func() *rate.Limiter {
		if opts.RequestsPerMinute <= 0 {
			return nil
		}
		return rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60.0), opts.RequestsPerMinute)
	}

	if opts.Gemini != nil {
		// One shared limiter for the whole family: these models hit the
		// same upstream quota.
		geminiLimiter := newLimiter()
		for _, m := range []modelreg.Model{modelreg.NanoBanana, modelreg.NanoBananaPro, modelreg.GeminiFlash, modelreg.GeminiPro} {
			r.generators[m] = opts.Gemini.ForModel(m)
			r.limiters[m] = geminiLimiter
		}
	}
	if opts.ByteDance != nil {
		r.generators[modelreg.Seedream] = opts.ByteDance
		r.limiters[modelreg.Seedream] = newLimiter()
	}
	if opts.Fal != nil {
		r.generators[modelreg.FalFlux] = opts.Fal
		r.limiters[modelreg.FalFlux] = newLimiter()
	}
	return r
}

// Resolve returns the generator for a model, or false when the model has no
// configured backend.
func (r *Registry) Resolve(m modelreg.Model) (Generator, bool) {
	g, ok := r.generators[m]
	return g, ok
}

// Dispatch resolves and invokes the generator for m, honoring the per-model
// outbound throttle.
func (r *Registry) Dispatch(ctx context.Context, m modelreg.Model, req GenerateRequest) ([]Payload, error) {
	g, ok := r.generators[m]
	if !ok {
		return nil, providerErr(string(m), "no backend configured")
	}
	if lim := r.limiters[m]; lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return nil, providerErr(string(m), "throttle wait: %w", err)
		}
	}
	return g.Generate(ctx, req)
}
