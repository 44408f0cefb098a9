package domain

import "time"

// Timeout contracts and lifecycle budgets.
// These are compiled defaults that can be overridden via configuration.
const (
	// Network-backed time sources
	RedisTimeout    = 2 * time.Second // Max time for a Redis TIME round trip
	GRPCCallTimeout = 2 * time.Second // Max time for a remote timegate call

	// Graceful shutdown
	GracefulShutdownTimeout = 30 * time.Second // Max time to drain connections on shutdown
	ShutdownDrainDelay      = 1 * time.Second  // Health reports 503 before listeners close
	ShutdownHTTPTimeout     = 10 * time.Second
	ShutdownOTELTimeout     = 5 * time.Second
)

// TimeSourceKind selects the adapter behind the TimeSource gateway.
type TimeSourceKind string

const (
	TimeSourceSystem    TimeSourceKind = "system"
	TimeSourceUnixClock TimeSourceKind = "unixclock"
	TimeSourceRedis     TimeSourceKind = "redis"
	TimeSourceRemote    TimeSourceKind = "remote"
)

// IsValidTimeSourceKind checks if a time source kind is supported.
func IsValidTimeSourceKind(k TimeSourceKind) bool {
	switch k {
	case TimeSourceSystem, TimeSourceUnixClock, TimeSourceRedis, TimeSourceRemote:
		return true
	}
	return false
}

// Unit names accepted wherever a single reading is requested.
type Unit string

const (
	UnitNano  Unit = "ns"
	UnitMilli Unit = "ms"
	UnitSec   Unit = "s"
)
