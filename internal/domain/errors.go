package domain

import "errors"

// Sentinel errors for domain error conditions.
// Use errors.Is() for matching - never compare error strings.
var (
	// Time source error kinds. Adapters wrap the underlying cause with one
	// of these so callers can branch without parsing messages.
	ErrGateway    = errors.New("time source gateway error")
	ErrProcessing = errors.New("timestamp processing failure")

	// Clock read causes
	ErrClockBeforeEpoch = errors.New("clock reading precedes the Unix epoch")

	// Timestamp construction errors
	ErrTimestampUnset       = errors.New("timestamp value not set")
	ErrTimestampOutOfRange  = errors.New("timestamp out of representable range")
	ErrTimestampBeforeEpoch = errors.New("timestamp before the Unix epoch")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")

	// Operational errors
	ErrUnavailable = errors.New("service temporarily unavailable")

	// Configuration errors
	ErrConfigRequired = errors.New("required configuration key missing")
	ErrInvalidConfig  = errors.New("invalid configuration value")
)

// IsGatewayError returns true if the error reports that the underlying clock
// could not be read.
func IsGatewayError(err error) bool {
	return errors.Is(err, ErrGateway)
}

// IsProcessingFailure returns true if a clock reading was obtained but could
// not be turned into a UTCTimestamp.
func IsProcessingFailure(err error) bool {
	return errors.Is(err, ErrProcessing)
}

// IsTimestampConstructionError returns true for any TimestampBuilder
// validation failure.
func IsTimestampConstructionError(err error) bool {
	return errors.Is(err, ErrTimestampUnset) ||
		errors.Is(err, ErrTimestampOutOfRange) ||
		errors.Is(err, ErrTimestampBeforeEpoch)
}

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry. Adapters never retry on their own; the policy
// belongs to the caller. A clock set before the epoch is not transient.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
