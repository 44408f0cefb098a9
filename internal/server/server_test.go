package server_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/aelexs/timegate/internal/config"
	"github.com/aelexs/timegate/internal/domain"
	"github.com/aelexs/timegate/internal/server"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testParams() server.Params {
	return server.Params{
		Name:           "testservice",
		PortFromConfig: func(_ *config.Config) int { return 0 },
	}
}

func TestRunGracefulShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ln := newTestListener(t)
	addr := ln.Addr().String()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(ctx, testParams(), server.Listeners{HTTP: ln})
	}()

	waitForHealthy(t, addr)

	// Trigger shutdown
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(domain.GracefulShutdownTimeout + 5*time.Second):
		t.Fatal("shutdown did not complete within budget")
	}
}

func TestRunShutdownCompletesWithinBudget(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ln := newTestListener(t)
	addr := ln.Addr().String()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(ctx, testParams(), server.Listeners{HTTP: ln})
	}()

	waitForHealthy(t, addr)

	start := time.Now()
	cancel()

	select {
	case <-errCh:
		elapsed := time.Since(start)
		if elapsed > domain.GracefulShutdownTimeout {
			t.Errorf("shutdown took %v, exceeds %v budget", elapsed, domain.GracefulShutdownTimeout)
		}
	case <-time.After(domain.GracefulShutdownTimeout + 5*time.Second):
		t.Fatal("shutdown timed out")
	}
}

func TestHealthCheckReturns503DuringShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ln := newTestListener(t)
	addr := ln.Addr().String()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(ctx, testParams(), server.Listeners{HTTP: ln})
	}()

	waitForHealthy(t, addr)

	// Trigger shutdown
	cancel()

	// Health check should return 503 during drain delay (before server stops).
	eventually(t, 2*time.Second, func() bool {
		resp, err := httpGet(t, fmt.Sprintf("http://%s/healthz", addr))
		if err != nil {
			return false // server may have already stopped
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusServiceUnavailable
	})

	<-errCh // wait for clean exit
}

func TestRunGRPCHealth(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	httpLn := newTestListener(t)
	grpcLn := newTestListener(t)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(ctx, testParams(), server.Listeners{HTTP: httpLn, GRPC: grpcLn})
	}()

	waitForHealthy(t, httpLn.Addr().String())

	conn, err := grpc.NewClient(grpcLn.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)
	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	cancel()

	// During the drain delay the gRPC health service reports NOT_SERVING.
	eventually(t, 2*time.Second, func() bool {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_NOT_SERVING
	})

	require.NoError(t, <-errCh)
}

func TestRunSetup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var cleaned atomic.Bool
	params := testParams()
	params.GRPCPortFromConfig = func(_ *config.Config) int { return 0 }
	params.Setup = func(_ context.Context, deps server.SetupDeps) (func(context.Context) error, error) {
		assert.NotNil(t, deps.Config)
		assert.NotNil(t, deps.Logger)
		assert.NotNil(t, deps.GRPCServer)
		deps.HTTPMux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "pong")
		})
		return func(context.Context) error {
			cleaned.Store(true)
			return nil
		}, nil
	}

	ln := newTestListener(t)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(ctx, params, server.Listeners{HTTP: ln, GRPC: newTestListener(t)})
	}()

	waitForHealthy(t, ln.Addr().String())

	resp, err := httpGet(t, fmt.Sprintf("http://%s/ping", ln.Addr().String()))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	cancel()
	require.NoError(t, <-errCh)
	assert.True(t, cleaned.Load(), "setup cleanup must run on shutdown")
}

func TestRunSetupError(t *testing.T) {
	params := testParams()
	params.Setup = func(context.Context, server.SetupDeps) (func(context.Context) error, error) {
		return nil, errors.New("adapter unavailable")
	}
	ln := newTestListener(t)

	err := server.Run(context.Background(), params, server.Listeners{HTTP: ln})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup testservice")
	assert.Contains(t, err.Error(), "adapter unavailable")

	_, acceptErr := ln.Accept()
	assert.ErrorIs(t, acceptErr, net.ErrClosed, "listener must be released")
}

func TestRunInvalidConfig(t *testing.T) {
	t.Setenv("TIMESOURCE_KIND", "sundial")

	err := server.Run(context.Background(), testParams(), server.Listeners{HTTP: newTestListener(t)})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

// newTestListener creates a TCP listener on an OS-assigned port.
func newTestListener(t *testing.T) net.Listener {
	t.Helper()
	ln, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to create test listener: %v", err)
	}
	return ln
}

// waitForHealthy polls the health endpoint until it returns 200.
func waitForHealthy(t *testing.T, addr string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := httpGet(t, fmt.Sprintf("http://%s/healthz", addr))
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("server at %s not healthy within 5s", addr)
}

// httpGet performs an HTTP GET with a background context (satisfies noctx linter).
func httpGet(t *testing.T, url string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return http.DefaultClient.Do(req)
}

// eventually retries f until it returns true or timeout expires.
func eventually(t *testing.T, timeout time.Duration, f func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if f() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}
