package domaintest

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/aelexs/timegate/internal/domain"
)

// FakeTimeSource is a domain.TimeSource returning a controllable instant or
// a forced error. It counts calls so tests can assert that nothing retried.
type FakeTimeSource struct {
	mu    sync.Mutex
	nanos uint64
	err   error
	calls int
}

// NewFakeTimeSource creates a FakeTimeSource fixed at nanos since the epoch.
// It panics if nanos is outside the representable range.
func NewFakeTimeSource(nanos uint64) *FakeTimeSource {
	if _, err := domain.FromNanos(nanos); err != nil {
		panic(err)
	}
	return &FakeTimeSource{nanos: nanos}
}

// Now returns the configured instant, or the configured error with a zero
// timestamp. An instant moved past MaxTimestampNanos fails as ErrProcessing,
// like a real adapter.
func (s *FakeTimeSource) Now(_ context.Context) (domain.UTCTimestamp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.err != nil {
		return domain.UTCTimestamp{}, s.err
	}
	ts, err := domain.FromNanos(s.nanos)
	if err != nil {
		return domain.UTCTimestamp{}, fmt.Errorf("%w: fake time source: %w", domain.ErrProcessing, err)
	}
	return ts, nil
}

// Advance moves the instant by d. A negative d moves it backwards, stopping
// at the epoch; a positive d saturates instead of wrapping.
func (s *FakeTimeSource) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case d < 0:
		back := uint64(-(d + 1)) + 1 // -d overflows for math.MinInt64
		if back > s.nanos {
			s.nanos = 0
			return
		}
		s.nanos -= back
	case uint64(d) > math.MaxUint64-s.nanos:
		s.nanos = math.MaxUint64
	default:
		s.nanos += uint64(d)
	}
}

// Set changes the instant to nanos since the epoch.
func (s *FakeTimeSource) Set(nanos uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nanos = nanos
}

// Fail makes every subsequent Now return err. Fail(nil) restores success.
func (s *FakeTimeSource) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls reports how many times Now has been invoked.
func (s *FakeTimeSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var _ domain.TimeSource = (*FakeTimeSource)(nil)
