package adapter

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/aelexs/timegate/internal/domain"
	"github.com/aelexs/timegate/internal/errmap"
	"github.com/aelexs/timegate/pkg/protocol"
)

// RemoteTimeSource reads the clock of another timegate over gRPC.
type RemoteTimeSource struct {
	client  protocol.TimeServiceClient
	timeout time.Duration
}

// NewRemoteTimeSource creates a RemoteTimeSource over client. A positive
// timeout bounds each call on top of the caller's context.
func NewRemoteTimeSource(client protocol.TimeServiceClient, timeout time.Duration) *RemoteTimeSource {
	return &RemoteTimeSource{client: client, timeout: timeout}
}

// Now performs one TimeService.Now call. A failed call is a gateway error,
// and also matches domain.ErrUnavailable when the status is transient.
func (s *RemoteTimeSource) Now(ctx context.Context) (domain.UTCTimestamp, error) {
	ctx, span := tracer.Start(ctx, "timegate.remote.now")
	defer span.End()
	span.SetAttributes(
		attribute.String("rpc.system", "grpc"),
		attribute.String("rpc.method", protocol.MethodNow),
	)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	reply, err := s.client.Now(ctx)
	if err != nil {
		if errmap.IsTransient(err) {
			err = fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
		}
		err = gatewayError("remote", err)
		recordError(span, err)
		return domain.UTCTimestamp{}, err
	}

	ts, err := fromProto(reply)
	if err != nil {
		recordError(span, err)
		return domain.UTCTimestamp{}, err
	}
	return ts, nil
}

// fromProto validates the wire message before looking at the instant, so
// malformed Nanos cannot be folded into Seconds and every reading before the
// epoch is reported the same way.
func fromProto(reply *timestamppb.Timestamp) (domain.UTCTimestamp, error) {
	if err := protocol.CheckTimestamp(reply); err != nil {
		return domain.UTCTimestamp{}, fmt.Errorf("%w: malformed remote time: %w", domain.ErrProcessing, err)
	}

	if reply.GetSeconds() < 0 {
		return domain.UTCTimestamp{}, gatewayError("remote",
			fmt.Errorf("%w: %ds", domain.ErrClockBeforeEpoch, reply.GetSeconds()))
	}

	ts, err := protocol.TimestampFromProto(reply)
	if err != nil {
		return domain.UTCTimestamp{}, fmt.Errorf("%w: failed to build the timestamp from the remote time: %w",
			domain.ErrProcessing, err)
	}
	return ts, nil
}

var _ domain.TimeSource = (*RemoteTimeSource)(nil)
