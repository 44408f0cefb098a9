package protocol

import (
	"fmt"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/aelexs/timegate/internal/domain"
)

// Reading is the JSON body of GET /v1/now. Nanos is string-encoded because
// it exceeds the integer precision of JSON numbers in most clients.
type Reading struct {
	Nanos   uint64 `json:"nanos,string"`
	Millis  uint64 `json:"millis"`
	Seconds uint64 `json:"seconds"`
}

// NewReading returns every reading of ts.
func NewReading(ts domain.UTCTimestamp) Reading {
	return Reading{
		Nanos:   ts.AsNano(),
		Millis:  ts.AsMilli(),
		Seconds: ts.AsSec(),
	}
}

// UnitReading is the JSON body of GET /v1/now?unit=ns|ms|s.
type UnitReading struct {
	Unit  string `json:"unit"`
	Value uint64 `json:"value,string"`
}

// Error is the JSON body of a failed HTTP request.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TimestampToProto converts ts to a protobuf Timestamp.
func TimestampToProto(ts domain.UTCTimestamp) *timestamppb.Timestamp {
	return &timestamppb.Timestamp{
		Seconds: int64(ts.AsSec()),
		Nanos:   int32(ts.AsNano() % domain.NanosPerSecond),
	}
}

// CheckTimestamp reports whether p is a well-formed protobuf Timestamp:
// non-nil, Nanos in [0, 1e9) and Seconds within years 0001 to 9999. It says
// nothing about whether the instant is representable as a UTCTimestamp.
func CheckTimestamp(p *timestamppb.Timestamp) error {
	if p == nil {
		return domain.ErrTimestampUnset
	}
	if err := p.CheckValid(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return nil
}

// TimestampFromProto converts a protobuf Timestamp received from a peer.
// Malformed messages are rejected with ErrInvalidInput (or ErrTimestampUnset
// for nil) instead of being normalised; otherwise the returned error wraps a
// domain construction error.
func TimestampFromProto(p *timestamppb.Timestamp) (domain.UTCTimestamp, error) {
	if err := CheckTimestamp(p); err != nil {
		return domain.UTCTimestamp{}, fmt.Errorf("protobuf timestamp: %w", err)
	}
	ts, err := domain.NewTimestampBuilder().UseUnix(p.GetSeconds(), int64(p.GetNanos())).Build()
	if err != nil {
		return domain.UTCTimestamp{}, fmt.Errorf("protobuf timestamp %ds %dns: %w", p.GetSeconds(), p.GetNanos(), err)
	}
	return ts, nil
}
