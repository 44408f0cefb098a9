//go:build linux || darwin || freebsd || netbsd || openbsd

package adapter

import "golang.org/x/sys/unix"

// NewUnixClockTimeSourceWith exposes the clock_gettime hook to tests.
func NewUnixClockTimeSourceWith(gettime func(clockid int32, ts *unix.Timespec) error) *UnixClockTimeSource {
	return newUnixClockTimeSource(gettime)
}
