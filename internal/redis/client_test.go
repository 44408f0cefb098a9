package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	iredis "github.com/aelexs/timegate/internal/redis"
)

func newTestClient(t *testing.T, addr string) *iredis.Client {
	t.Helper()

	client := iredis.NewClient(iredis.Config{
		Addr:         addr,
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	t.Cleanup(func() {
		require.NoError(t, client.Close())
	})
	return client
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client := newTestClient(t, mr.Addr())

	require.NotNil(t, client, "NewClient must return a non-nil client")
	require.NotNil(t, client.RDB, "client.RDB must be non-nil")

	var _ iredis.Cmdable = client.RDB
}

func TestClient_Ping(t *testing.T) {
	t.Run("reachable server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := newTestClient(t, mr.Addr())

		assert.NoError(t, client.Ping(context.Background()))
	})

	t.Run("closed server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		client := newTestClient(t, addr)

		err := client.Ping(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis ping")
	})
}
