package adapter_test

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aelexs/timegate/internal/config"
	"github.com/aelexs/timegate/internal/domain"
	"github.com/aelexs/timegate/internal/timegate/adapter"
)

func TestNewFromConfig(t *testing.T) {
	t.Run("system", func(t *testing.T) {
		cfg := &config.Config{TimeSource: config.TimeSourceConfig{Kind: domain.TimeSourceSystem}}

		src, cleanup, err := adapter.NewFromConfig(context.Background(), cfg)

		require.NoError(t, err)
		defer func() { require.NoError(t, cleanup()) }()
		assert.IsType(t, &adapter.SystemTimeSource{}, src)

		_, err = src.Now(context.Background())
		assert.NoError(t, err)
	})

	t.Run("unixclock", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("clock_gettime is not available")
		}
		cfg := &config.Config{TimeSource: config.TimeSourceConfig{Kind: domain.TimeSourceUnixClock}}

		src, cleanup, err := adapter.NewFromConfig(context.Background(), cfg)

		require.NoError(t, err)
		defer func() { require.NoError(t, cleanup()) }()
		_, err = src.Now(context.Background())
		assert.NoError(t, err)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		mr.SetTime(time.Unix(1, 500_000_000))
		cfg := &config.Config{
			TimeSource: config.TimeSourceConfig{Kind: domain.TimeSourceRedis},
			Redis:      config.RedisConfig{Addr: mr.Addr(), Timeout: time.Second},
		}

		src, cleanup, err := adapter.NewFromConfig(context.Background(), cfg)

		require.NoError(t, err)
		defer func() { require.NoError(t, cleanup()) }()
		ts, err := src.Now(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint64(1_500_000_000), ts.AsNano())
	})

	t.Run("remote connects lazily", func(t *testing.T) {
		cfg := &config.Config{
			TimeSource: config.TimeSourceConfig{Kind: domain.TimeSourceRemote},
			Remote:     config.RemoteConfig{Target: "timegate.invalid:9095", Timeout: time.Second},
		}

		src, cleanup, err := adapter.NewFromConfig(context.Background(), cfg)

		require.NoError(t, err)
		assert.IsType(t, &adapter.RemoteTimeSource{}, src)
		assert.NoError(t, cleanup())
	})

	t.Run("unknown kind", func(t *testing.T) {
		cfg := &config.Config{TimeSource: config.TimeSourceConfig{Kind: "sundial"}}

		_, _, err := adapter.NewFromConfig(context.Background(), cfg)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})
}
