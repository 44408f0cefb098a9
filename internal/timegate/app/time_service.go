// Package app holds the timegate use case: reading the configured
// TimeSource once per request and recording the outcome.
package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/aelexs/timegate/internal/domain"
)

var tracer = otel.Tracer("timegate/app")

var (
	readsTotal   metric.Int64Counter
	readDuration metric.Float64Histogram
)

func init() {
	m := otel.Meter("timegate/app")

	readsTotal, _ = m.Int64Counter("timegate_reads_total",
		metric.WithDescription("Total time source reads by outcome"))
	readDuration, _ = m.Float64Histogram("timegate_read_duration_seconds",
		metric.WithDescription("Time source read latency"),
		metric.WithUnit("s"))
}

// Read outcomes recorded on timegate_reads_total.
const (
	OutcomeOK                = "ok"
	OutcomeGatewayError      = "gateway_error"
	OutcomeProcessingFailure = "processing_failure"
	OutcomeError             = "error"
)

// TimeServiceConfig holds the dependencies for TimeService.
type TimeServiceConfig struct {
	Source domain.TimeSource
	Name   string // source kind, recorded on spans and metrics
	Logger *slog.Logger
}

// TimeService reads the current UTC instant from a TimeSource.
type TimeService struct {
	source domain.TimeSource
	name   string
	logger *slog.Logger
}

// NewTimeService creates a TimeService. A nil logger discards logs.
func NewTimeService(cfg TimeServiceConfig) *TimeService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TimeService{
		source: cfg.Source,
		name:   cfg.Name,
		logger: logger,
	}
}

// Now performs exactly one read of the source. Errors are returned
// unchanged so callers can classify them with domain.IsGatewayError and
// domain.IsProcessingFailure.
func (s *TimeService) Now(ctx context.Context) (domain.UTCTimestamp, error) {
	ctx, span := tracer.Start(ctx, "timegate.now")
	defer span.End()
	span.SetAttributes(attribute.String("timegate.source", s.name))

	start := time.Now()
	ts, err := s.source.Now(ctx)
	elapsed := time.Since(start)

	outcome := Outcome(err)
	attrs := metric.WithAttributes(
		attribute.String("source", s.name),
		attribute.String("outcome", outcome),
	)
	readsTotal.Add(ctx, 1, attrs)
	readDuration.Record(ctx, elapsed.Seconds(), attrs)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.WarnContext(ctx, "time source read failed",
			slog.String("source", s.name),
			slog.String("outcome", outcome),
			slog.Bool("retryable", domain.IsRetryable(err)),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
		return domain.UTCTimestamp{}, err
	}

	span.SetAttributes(attribute.Int64("timegate.nanos", int64(ts.AsNano())))
	s.logger.DebugContext(ctx, "time source read", slog.Any("timestamp", ts))
	return ts, nil
}

// Outcome classifies a read result for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case domain.IsGatewayError(err):
		return OutcomeGatewayError
	case domain.IsProcessingFailure(err):
		return OutcomeProcessingFailure
	}
	return OutcomeError
}
