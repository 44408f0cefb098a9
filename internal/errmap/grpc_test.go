package errmap_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aelexs/timegate/internal/domain"
	"github.com/aelexs/timegate/internal/errmap"
)

func TestToGRPCStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode codes.Code
	}{
		{"nil error", nil, codes.OK},
		{"ErrGateway", domain.ErrGateway, codes.Unavailable},
		{"ErrProcessing", domain.ErrProcessing, codes.Internal},
		{"ErrInvalidInput", domain.ErrInvalidInput, codes.InvalidArgument},
		{"ErrUnavailable", domain.ErrUnavailable, codes.Unavailable},

		// Wrapped errors
		{"gateway with cause", fmt.Errorf("%w: read: %w", domain.ErrGateway, domain.ErrClockBeforeEpoch), codes.Unavailable},
		{"processing with cause", fmt.Errorf("%w: build: %w", domain.ErrProcessing, domain.ErrTimestampOutOfRange), codes.Internal},

		// Unknown errors map to Internal
		{"unknown error", errors.New("unexpected"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errmap.ToGRPCStatus(tt.err)
			assert.Equal(t, tt.wantCode, got.Code())
		})
	}
}

func TestToGRPCStatus_MessageExposure(t *testing.T) {
	t.Run("time source causes are not sent to clients", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			want string
		}{
			{"gateway", fmt.Errorf("%w: redis: %w: dial tcp 10.0.3.7:6379: connection refused",
				domain.ErrGateway, domain.ErrUnavailable), "clock unavailable"},
			{"processing", fmt.Errorf("%w: build: %w", domain.ErrProcessing, domain.ErrTimestampOutOfRange),
				"timestamp processing failure"},
			{"unavailable", fmt.Errorf("%w: redis password=hunter2", domain.ErrUnavailable),
				"service temporarily unavailable"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got := errmap.ToGRPCStatus(tt.err)

				assert.Equal(t, tt.want, got.Message())
				assert.NotContains(t, got.Message(), "10.0.3.7")
				assert.NotContains(t, got.Message(), "hunter2")
			})
		}
	})

	t.Run("validation errors keep their message", func(t *testing.T) {
		err := fmt.Errorf("%w: unit %q", domain.ErrInvalidInput, "fortnights")
		got := errmap.ToGRPCStatus(err)
		assert.Equal(t, err.Error(), got.Message())
	})

	t.Run("unmapped errors are hidden", func(t *testing.T) {
		got := errmap.ToGRPCStatus(errors.New("db password=hunter2"))
		assert.Equal(t, "internal error", got.Message())
	})
}

func TestToGRPCError(t *testing.T) {
	t.Run("returns nil for nil error", func(t *testing.T) {
		got := errmap.ToGRPCError(nil)
		assert.Nil(t, got)
	})

	t.Run("returns error for non-nil", func(t *testing.T) {
		got := errmap.ToGRPCError(domain.ErrGateway)
		assert.NotNil(t, got)
		assert.Equal(t, codes.Unavailable, errmap.FromGRPCError(got))
	})
}

func TestFromGRPCError(t *testing.T) {
	t.Run("returns OK for nil", func(t *testing.T) {
		got := errmap.FromGRPCError(nil)
		assert.Equal(t, codes.OK, got)
	})

	t.Run("extracts code from gRPC error", func(t *testing.T) {
		grpcErr := errmap.ToGRPCError(domain.ErrProcessing)
		got := errmap.FromGRPCError(grpcErr)
		assert.Equal(t, codes.Internal, got)
	})

	t.Run("returns Unknown for non-gRPC error", func(t *testing.T) {
		got := errmap.FromGRPCError(fmt.Errorf("regular error"))
		assert.Equal(t, codes.Unknown, got)
	})
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unavailable", status.Error(codes.Unavailable, "down"), true},
		{"deadline exceeded", status.Error(codes.DeadlineExceeded, "slow"), true},
		{"canceled", status.Error(codes.Canceled, "bye"), true},
		{"internal", status.Error(codes.Internal, "bug"), false},
		{"context deadline", context.DeadlineExceeded, true},
		{"plain error", errors.New("plain"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errmap.IsTransient(tt.err))
		})
	}
}

// TestGRPCMappingCompleteness ensures every error a TimeSource caller can
// observe has an explicit mapping. Configuration and construction errors
// never cross the wire on their own, so they map to Internal.
func TestGRPCMappingCompleteness(t *testing.T) {
	domainErrors := []error{
		domain.ErrGateway,
		domain.ErrProcessing,
		domain.ErrInvalidInput,
		domain.ErrUnavailable,
	}

	for _, err := range domainErrors {
		t.Run(err.Error(), func(t *testing.T) {
			st := errmap.ToGRPCStatus(err)
			assert.NotEqual(t, "internal error", st.Message(),
				"domain error %q should have explicit gRPC mapping", err.Error())
		})
	}

	for _, err := range []error{domain.ErrConfigRequired, domain.ErrInvalidConfig} {
		t.Run(err.Error(), func(t *testing.T) {
			assert.Equal(t, codes.Internal, errmap.ToGRPCStatus(err).Code())
		})
	}
}
