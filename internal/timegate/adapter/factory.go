package adapter

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/aelexs/timegate/internal/config"
	"github.com/aelexs/timegate/internal/domain"
	redisclient "github.com/aelexs/timegate/internal/redis"
	"github.com/aelexs/timegate/pkg/protocol"
)

// NewFromConfig builds the TimeSource selected by cfg.TimeSource.Kind. The
// returned cleanup releases any connection the source opened and must be
// called once the source is no longer used. Connections are lazy: an
// unreachable backend surfaces on the first Now, not here.
func NewFromConfig(_ context.Context, cfg *config.Config) (domain.TimeSource, func() error, error) {
	noop := func() error { return nil }

	switch cfg.TimeSource.Kind {
	case domain.TimeSourceSystem:
		return NewSystemTimeSource(domain.RealClock{}), noop, nil

	case domain.TimeSourceUnixClock:
		src, err := openUnixClock()
		if err != nil {
			return nil, nil, err
		}
		return src, noop, nil

	case domain.TimeSourceRedis:
		client := redisclient.NewClient(redisclient.Config{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.Timeout,
			ReadTimeout:  cfg.Redis.Timeout,
			WriteTimeout: cfg.Redis.Timeout,
		})
		return NewRedisTimeSource(client.RDB, cfg.Redis.Timeout), client.Close, nil

	case domain.TimeSourceRemote:
		conn, err := grpc.NewClient(cfg.Remote.Target,
			grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, nil, fmt.Errorf("dial remote timegate %q: %w", cfg.Remote.Target, err)
		}
		src := NewRemoteTimeSource(protocol.NewTimeServiceClient(conn), cfg.Remote.Timeout)
		return src, conn.Close, nil
	}

	return nil, nil, fmt.Errorf("%w: timesource.kind %q", domain.ErrInvalidConfig, cfg.TimeSource.Kind)
}
