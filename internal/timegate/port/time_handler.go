// Package port exposes the time service over gRPC and HTTP.
package port

import (
	"context"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/aelexs/timegate/internal/domain"
	"github.com/aelexs/timegate/internal/errmap"
	"github.com/aelexs/timegate/pkg/protocol"
)

// timeService is the narrow interface the handlers require. The
// *app.TimeService satisfies it.
type timeService interface {
	Now(ctx context.Context) (domain.UTCTimestamp, error)
}

// TimeHandler implements protocol.TimeServiceServer.
type TimeHandler struct {
	svc timeService
}

// NewTimeHandler creates a TimeHandler backed by svc.
func NewTimeHandler(svc timeService) *TimeHandler {
	return &TimeHandler{svc: svc}
}

// Now returns the current instant as a protobuf Timestamp.
func (h *TimeHandler) Now(ctx context.Context, _ *emptypb.Empty) (*timestamppb.Timestamp, error) {
	ts, err := h.svc.Now(ctx)
	if err != nil {
		return nil, errmap.ToGRPCError(err)
	}
	return protocol.TimestampToProto(ts), nil
}

var _ protocol.TimeServiceServer = (*TimeHandler)(nil)
