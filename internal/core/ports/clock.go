package ports

import (
	"context"
	"time"
)

// Clock abstracts time for the orchestrator's fixed-delay waits so tests can
// simulate elapsed time without real sleeps.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// RateLimiter gates outbound calls to a remote service.
type RateLimiter interface {
	Wait(ctx context.Context) error
}
