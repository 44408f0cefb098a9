package domain

import (
	"context"
	"time"
)

// Clock is the host wall-clock primitive. Implementations may be real
// (production) or deterministic (testing). Adapters consume it; callers
// outside this module should depend on TimeSource instead.
type Clock interface {
	// Now returns the current time. The returned time includes both wall clock
	// and monotonic readings when using RealClock.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns time.Now().
func (RealClock) Now() time.Time {
	return time.Now()
}

// TimeSource is the gateway for reading the current instant. Every read of
// "now" in this module goes through a TimeSource injected by the caller.
//
// Now returns an error wrapping ErrGateway when the underlying clock cannot
// be read relative to the epoch, or ErrProcessing when the reading cannot be
// turned into a UTCTimestamp. It never retries. Implementations must be safe
// for concurrent use.
type TimeSource interface {
	Now(ctx context.Context) (UTCTimestamp, error)
}

// TimeSourceFunc adapts an ordinary function to TimeSource.
type TimeSourceFunc func(ctx context.Context) (UTCTimestamp, error)

// Now calls f(ctx).
func (f TimeSourceFunc) Now(ctx context.Context) (UTCTimestamp, error) {
	return f(ctx)
}

// Ensure RealClock implements Clock at compile time.
var _ Clock = RealClock{}

var _ TimeSource = TimeSourceFunc(nil)
