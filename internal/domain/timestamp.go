package domain

import (
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Unit conversion factors for UTCTimestamp readings.
const (
	NanosPerMilli  = 1_000_000
	NanosPerSecond = 1_000_000_000
	MillisPerSec   = 1_000
)

// MaxTimestampNanos is the largest nanosecond count a UTCTimestamp can hold
// (2262-04-11T23:47:16.854775807Z). It is capped at math.MaxInt64 so every
// timestamp converts to time.Time without loss.
const MaxTimestampNanos uint64 = math.MaxInt64

// UnixEpoch is the reference instant all timestamps are measured from.
var UnixEpoch = time.Unix(0, 0).UTC()

// UTCTimestamp is an immutable instant expressed as nanoseconds since the
// Unix epoch. The zero value is the epoch itself.
//
// Instances are created through TimestampBuilder (or FromNanos), which
// validates the range once; there are no setters afterwards.
type UTCTimestamp struct {
	nanos uint64
}

// FromNanos builds a UTCTimestamp from a nanosecond count since the epoch.
func FromNanos(n uint64) (UTCTimestamp, error) {
	return NewTimestampBuilder().UseNanos(n).Build()
}

// AsNano returns the exact nanosecond count since the epoch.
func (t UTCTimestamp) AsNano() uint64 {
	return t.nanos
}

// AsMilli returns whole milliseconds since the epoch, truncated.
func (t UTCTimestamp) AsMilli() uint64 {
	return t.nanos / NanosPerMilli
}

// AsSec returns whole seconds since the epoch, truncated.
func (t UTCTimestamp) AsSec() uint64 {
	return t.nanos / NanosPerSecond
}

// Time returns the same instant as a UTC time.Time.
func (t UTCTimestamp) Time() time.Time {
	return time.Unix(0, int64(t.nanos)).UTC()
}

// Reading returns the timestamp expressed in unit.
func (t UTCTimestamp) Reading(unit Unit) (uint64, error) {
	switch unit {
	case UnitNano:
		return t.AsNano(), nil
	case UnitMilli:
		return t.AsMilli(), nil
	case UnitSec:
		return t.AsSec(), nil
	}
	return 0, ErrInvalidInput
}

// LogValue implements slog.LogValuer.
func (t UTCTimestamp) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("nanos", t.AsNano()),
		slog.Uint64("millis", t.AsMilli()),
		slog.Uint64("seconds", t.AsSec()),
	)
}

// TimestampBuilder collects a single input for a UTCTimestamp and validates
// it in Build. Builders are plain values: every Use* method returns a new
// builder and the last one called wins.
type TimestampBuilder struct {
	nanos uint64
	set   bool
	err   error
}

// NewTimestampBuilder returns an empty builder. Build on it fails with
// ErrTimestampUnset.
func NewTimestampBuilder() TimestampBuilder {
	return TimestampBuilder{}
}

// UseNanos sets the instant as nanoseconds since the epoch.
func (b TimestampBuilder) UseNanos(n uint64) TimestampBuilder {
	if n > MaxTimestampNanos {
		return TimestampBuilder{set: true, err: fmt.Errorf("%w: %d ns exceeds %d ns",
			ErrTimestampOutOfRange, n, MaxTimestampNanos)}
	}
	return TimestampBuilder{nanos: n, set: true}
}

// UseUnix sets the instant from seconds and nanoseconds since the epoch.
// nsec may be outside [0, 1e9); the excess is carried into sec.
func (b TimestampBuilder) UseUnix(sec, nsec int64) TimestampBuilder {
	n, err := unixToNanos(sec, nsec)
	if err != nil {
		return TimestampBuilder{set: true, err: err}
	}
	return TimestampBuilder{nanos: n, set: true}
}

// UseTime sets the instant from t.
func (b TimestampBuilder) UseTime(t time.Time) TimestampBuilder {
	return b.UseUnix(t.Unix(), int64(t.Nanosecond()))
}

// UseDuration sets the instant as time elapsed since the epoch.
func (b TimestampBuilder) UseDuration(d time.Duration) TimestampBuilder {
	if d < 0 {
		return TimestampBuilder{set: true, err: fmt.Errorf("%w: elapsed %s",
			ErrTimestampBeforeEpoch, d)}
	}
	return b.UseNanos(uint64(d))
}

// Build validates the collected input and returns the timestamp. On failure
// the returned timestamp is the zero value and must not be used.
func (b TimestampBuilder) Build() (UTCTimestamp, error) {
	if !b.set {
		return UTCTimestamp{}, ErrTimestampUnset
	}
	if b.err != nil {
		return UTCTimestamp{}, b.err
	}
	return UTCTimestamp{nanos: b.nanos}, nil
}

// unixToNanos normalises (sec, nsec) and converts it to a nanosecond count,
// reporting instants before the epoch or beyond MaxTimestampNanos.
func unixToNanos(sec, nsec int64) (uint64, error) {
	carry := nsec / NanosPerSecond
	nsec -= carry * NanosPerSecond
	if nsec < 0 {
		nsec += NanosPerSecond
		carry--
	}

	if (carry > 0 && sec > math.MaxInt64-carry) || (carry < 0 && sec < math.MinInt64-carry) {
		return 0, fmt.Errorf("%w: %ds + %dns overflows int64 seconds", ErrTimestampOutOfRange, sec, nsec)
	}
	sec += carry

	if sec < 0 {
		return 0, fmt.Errorf("%w: %ds", ErrTimestampBeforeEpoch, sec)
	}

	if uint64(sec) > (MaxTimestampNanos-uint64(nsec))/NanosPerSecond {
		return 0, fmt.Errorf("%w: %ds exceeds %d ns", ErrTimestampOutOfRange, sec, MaxTimestampNanos)
	}

	return uint64(sec)*NanosPerSecond + uint64(nsec), nil
}
