package adapter

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aelexs/timegate/internal/domain"
)

// gatewayError reports that source could not be read.
func gatewayError(source string, cause error) error {
	return fmt.Errorf("%w: failed to retrieve the %s time: %w", domain.ErrGateway, source, cause)
}

// fromTime finishes a read of source that produced t.
func fromTime(source string, t time.Time) (domain.UTCTimestamp, error) {
	if t.Before(domain.UnixEpoch) {
		return domain.UTCTimestamp{}, gatewayError(source,
			fmt.Errorf("%w: %s", domain.ErrClockBeforeEpoch, t.UTC().Format(time.RFC3339Nano)))
	}
	return build(source, domain.NewTimestampBuilder().UseTime(t))
}

// build runs the builder and tags a validation failure as ErrProcessing.
func build(source string, b domain.TimestampBuilder) (domain.UTCTimestamp, error) {
	ts, err := b.Build()
	if err != nil {
		return domain.UTCTimestamp{}, fmt.Errorf("%w: failed to build the timestamp from the %s time: %w",
			domain.ErrProcessing, source, err)
	}
	return ts, nil
}

// recordError marks span as failed.
func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
