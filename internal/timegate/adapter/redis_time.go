package adapter

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/aelexs/timegate/internal/domain"
	redisclient "github.com/aelexs/timegate/internal/redis"
)

// RedisTimeSource reads the clock of a Redis server with the TIME command,
// giving every replica that shares the server the same notion of now.
type RedisTimeSource struct {
	cmd     redisclient.Cmdable
	timeout time.Duration
}

// NewRedisTimeSource creates a RedisTimeSource that uses cmd. A positive
// timeout bounds each TIME round trip on top of the caller's context.
func NewRedisTimeSource(cmd redisclient.Cmdable, timeout time.Duration) *RedisTimeSource {
	return &RedisTimeSource{cmd: cmd, timeout: timeout}
}

// Now issues a single TIME command. Transport failures are gateway errors
// that also match domain.ErrUnavailable.
func (s *RedisTimeSource) Now(ctx context.Context) (domain.UTCTimestamp, error) {
	ctx, span := tracer.Start(ctx, "redis.time")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "redis"),
		attribute.String("db.operation", "TIME"),
	)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	now, err := s.cmd.Time(ctx).Result()
	if err != nil {
		err = gatewayError("redis", fmt.Errorf("%w: %w", domain.ErrUnavailable, err))
		recordError(span, err)
		return domain.UTCTimestamp{}, err
	}

	ts, err := fromTime("redis", now)
	if err != nil {
		recordError(span, err)
		return domain.UTCTimestamp{}, err
	}
	return ts, nil
}

var _ domain.TimeSource = (*RedisTimeSource)(nil)
