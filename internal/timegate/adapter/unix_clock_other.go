//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package adapter

import (
	"fmt"
	"runtime"

	"github.com/aelexs/timegate/internal/domain"
)

func openUnixClock() (domain.TimeSource, error) {
	return nil, fmt.Errorf("%w: timesource.kind %q is not supported on %s",
		domain.ErrInvalidConfig, domain.TimeSourceUnixClock, runtime.GOOS)
}
