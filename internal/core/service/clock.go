package service

import (
	"time"

	"github.com/tolujimoh/flowdrift/internal/core/ports"
)

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// SystemClock returns the wall clock used outside of tests.
func SystemClock() ports.Clock {
	return systemClock{}
}
