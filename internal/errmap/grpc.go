// Package errmap provides wire protocol mappers for domain errors.
// Every domain error a caller can observe has explicit gRPC and HTTP mappings.
package errmap

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aelexs/timegate/internal/domain"
)

// grpcMappings maps domain errors to gRPC status codes.
// Order matters: first match wins (via errors.Is).
//
// Mapping follows gRPC status codes reference:
// https://grpc.github.io/grpc/core/md_doc_statuscodes.html
//
// Time source failures carry upstream causes (addresses, dial errors), so
// clients get the fixed message; the cause is logged by the app layer.
// Validation messages describe the caller's own input and are passed through.
var grpcMappings = []struct {
	err     error
	code    codes.Code
	message string // empty passes err.Error() through
}{
	// Time source errors
	{domain.ErrGateway, codes.Unavailable, "clock unavailable"},
	{domain.ErrProcessing, codes.Internal, "timestamp processing failure"},

	// Validation errors
	{domain.ErrInvalidInput, codes.InvalidArgument, ""},

	// Availability
	{domain.ErrUnavailable, codes.Unavailable, "service temporarily unavailable"},
}

// ToGRPCStatus converts a domain error to a gRPC status.
// The returned status can be sent directly to gRPC clients.
func ToGRPCStatus(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}
	for _, m := range grpcMappings {
		if errors.Is(err, m.err) {
			return status.New(m.code, clientMessage(m.message, err))
		}
	}
	// Never expose internal error details to clients
	return status.New(codes.Internal, "internal error")
}

// clientMessage returns the fixed message, or err's text when there is none.
func clientMessage(fixed string, err error) string {
	if fixed != "" {
		return fixed
	}
	return err.Error()
}

// ToGRPCError converts a domain error to a gRPC error (implements error interface).
func ToGRPCError(err error) error {
	return ToGRPCStatus(err).Err()
}

// FromGRPCError extracts the gRPC status code from an error.
// Returns codes.Unknown if the error is not a gRPC status error.
func FromGRPCError(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if st, ok := status.FromError(err); ok {
		return st.Code()
	}
	return codes.Unknown
}

// IsTransient reports whether a gRPC failure is worth retrying by the
// caller: the peer was unreachable or did not answer in time.
func IsTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	switch FromGRPCError(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return true
	}
	return false
}
