package adapter

import (
	"context"

	"github.com/aelexs/timegate/internal/domain"
)

// SystemTimeSource reads the host wall clock through a domain.Clock.
// It holds no mutable state and is safe for concurrent use.
type SystemTimeSource struct {
	clock domain.Clock
}

// NewSystemTimeSource creates a SystemTimeSource over clock. A nil clock
// means domain.RealClock.
func NewSystemTimeSource(clock domain.Clock) *SystemTimeSource {
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &SystemTimeSource{clock: clock}
}

// Now reads the clock once. A clock set before the epoch is a gateway
// error; a clock beyond year 2262 is a processing failure.
func (s *SystemTimeSource) Now(_ context.Context) (domain.UTCTimestamp, error) {
	return fromTime("system", s.clock.Now())
}

var _ domain.TimeSource = (*SystemTimeSource)(nil)
