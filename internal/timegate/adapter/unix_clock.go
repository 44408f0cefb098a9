//go:build linux || darwin || freebsd || netbsd || openbsd

package adapter

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/aelexs/timegate/internal/domain"
)

// clockGettimeFunc matches unix.ClockGettime.
type clockGettimeFunc func(clockid int32, ts *unix.Timespec) error

// UnixClockTimeSource reads CLOCK_REALTIME with clock_gettime(2), bypassing
// the Go runtime's time.Now. Unlike the system source, the host call itself
// can fail and that failure is surfaced as a gateway error.
type UnixClockTimeSource struct {
	gettime clockGettimeFunc
}

// NewUnixClockTimeSource creates a UnixClockTimeSource.
func NewUnixClockTimeSource() *UnixClockTimeSource {
	return newUnixClockTimeSource(unix.ClockGettime)
}

func newUnixClockTimeSource(gettime clockGettimeFunc) *UnixClockTimeSource {
	return &UnixClockTimeSource{gettime: gettime}
}

// Now performs a single clock_gettime call.
func (s *UnixClockTimeSource) Now(_ context.Context) (domain.UTCTimestamp, error) {
	var ts unix.Timespec
	if err := s.gettime(unix.CLOCK_REALTIME, &ts); err != nil {
		return domain.UTCTimestamp{}, gatewayError("clock_gettime", err)
	}

	sec, nsec := ts.Unix()
	if sec < 0 {
		return domain.UTCTimestamp{}, gatewayError("clock_gettime",
			fmt.Errorf("%w: %ds", domain.ErrClockBeforeEpoch, sec))
	}
	return build("clock_gettime", domain.NewTimestampBuilder().UseUnix(sec, nsec))
}

func openUnixClock() (domain.TimeSource, error) {
	return NewUnixClockTimeSource(), nil
}

var _ domain.TimeSource = (*UnixClockTimeSource)(nil)
