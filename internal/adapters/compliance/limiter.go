package compliance

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/tolujimoh/flowdrift/internal/core/ports"
)

const (
	defaultRateLimitRPS = 10
	minRateLimitRPS     = 1
	maxRateLimitRPS     = 100
)

type rateLimiter struct {
	limiter *rate.Limiter
	logger  ports.Logger
}

// NewRateLimiter builds a per-client limiter for compliance API calls. Out of
// range values fall back to the default.
func NewRateLimiter(rps int, logger ports.Logger) ports.RateLimiter {
	limitValue := defaultRateLimitRPS
	if rps >= minRateLimitRPS && rps <= maxRateLimitRPS {
		limitValue = rps
	} else if rps != 0 {
		logger.Warnf(context.Background(),
			"Invalid compliance API RPS configured (%d), using default %d. Valid range: %d-%d.",
			rps, defaultRateLimitRPS, minRateLimitRPS, maxRateLimitRPS)
	}

	return &rateLimiter{
		limiter: rate.NewLimiter(rate.Limit(limitValue), limitValue),
		logger:  logger,
	}
}

func (r *rateLimiter) Wait(ctx context.Context) error {
	err := r.limiter.Wait(ctx)
	if err != nil && ctx.Err() == nil {
		r.logger.Warnf(ctx, "Error waiting for compliance API rate limiter: %v", err)
	}
	return err
}
