package backend

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited wraps an API so that at most rpm requests per minute reach
// the backend. Callers block until a token is available or ctx ends.
type RateLimited struct {
	api     API
	limiter *rate.Limiter
}

// NewRateLimited wraps api. A non-positive rpm disables limiting.
func NewRateLimited(api API, rpm int) API {
	if rpm <= 0 {
		return api
	}
	return &RateLimited{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
	}
}

// Info implements API.
func (r *RateLimited) Info(ctx context.Context, unitID string) (*UnitInfo, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.api.Info(ctx, unitID)
}

// Convert implements API.
func (r *RateLimited) Convert(ctx context.Context, fromID, toID, value string) (*Conversion, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.api.Convert(ctx, fromID, toID, value)
}
