// Package server provides the shared service lifecycle runner.
// All cmd/ services delegate to server.Run for signal handling,
// config loading, observability init, health checks, and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/aelexs/timegate/internal/config"
	"github.com/aelexs/timegate/internal/domain"
	"github.com/aelexs/timegate/internal/observability"
)

// Params configures a service's lifecycle runner.
type Params struct {
	// Name identifies the service (e.g. "timegate").
	Name string

	// PortFromConfig extracts the HTTP port for this service from config.
	PortFromConfig func(cfg *config.Config) int

	// GRPCPortFromConfig extracts the gRPC port. Nil disables the gRPC
	// server unless a gRPC listener is injected.
	GRPCPortFromConfig func(cfg *config.Config) int

	// Setup is the service composition root. Optional.
	Setup SetupFunc
}

// SetupDeps is what Run hands to a service's Setup.
type SetupDeps struct {
	Config     *config.Config
	Logger     *slog.Logger
	GRPCServer *grpc.Server // nil when gRPC is disabled
	HTTPMux    *http.ServeMux
}

// SetupFunc wires a service onto the servers. The returned cleanup runs
// during shutdown after both servers have stopped; it may be nil.
type SetupFunc func(ctx context.Context, deps SetupDeps) (func(context.Context) error, error)

// Listeners optionally injects pre-bound listeners (enables port-0 testing).
// Run takes ownership of any listener passed in.
type Listeners struct {
	HTTP net.Listener
	GRPC net.Listener
}

// Run executes the full service lifecycle: signal handling, config loading,
// observability initialization, service setup, HTTP and gRPC servers with
// health checks, and graceful shutdown.
func Run(ctx context.Context, p Params, ls Listeners) error {
	// Signal-based cancellation: ctx.Done() closes on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		closeListeners(ls)
		return fmt.Errorf("load config: %w", err)
	}

	// Initialize structured logging with secret redaction
	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.ResolvedLogFormat(),
		ServiceName: p.Name,
		Environment: cfg.Environment,
	})

	// --- Startup order: tracer -> metrics -> setup -> servers ---

	tracerProvider, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName:    p.Name,
		ServiceVersion: observability.ServiceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTEL.Endpoint,
	})
	if err != nil {
		closeListeners(ls)
		return fmt.Errorf("initialize tracer: %w", err)
	}

	metricsProvider, err := observability.InitMetrics(ctx, observability.MetricsConfig{
		ServiceName:    p.Name,
		ServiceVersion: observability.ServiceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTEL.Endpoint,
	})
	if err != nil {
		closeListeners(ls)
		flushOTEL(logger, metricsProvider, tracerProvider)
		return fmt.Errorf("initialize metrics: %w", err)
	}

	var shuttingDown atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if shuttingDown.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"shutting_down","service":%q}`, p.Name)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","service":%q}`, p.Name)
	})

	var (
		grpcServer   *grpc.Server
		healthServer *health.Server
	)
	if p.GRPCPortFromConfig != nil || ls.GRPC != nil {
		grpcServer = grpc.NewServer()
		healthServer = health.NewServer()
		healthpb.RegisterHealthServer(grpcServer, healthServer)
	}

	var cleanup func(context.Context) error
	if p.Setup != nil {
		cleanup, err = p.Setup(ctx, SetupDeps{
			Config:     cfg,
			Logger:     logger,
			GRPCServer: grpcServer,
			HTTPMux:    mux,
		})
		if err != nil {
			closeListeners(ls)
			flushOTEL(logger, metricsProvider, tracerProvider)
			return fmt.Errorf("setup %s: %w", p.Name, err)
		}
	}

	// Bind listeners (use injected listeners or create from config).
	httpLn := ls.HTTP
	if httpLn == nil {
		httpLn, err = listen(ctx, p.PortFromConfig(cfg))
		if err != nil {
			closeListeners(ls)
			runCleanup(logger, cleanup)
			flushOTEL(logger, metricsProvider, tracerProvider)
			return fmt.Errorf("listen http: %w", err)
		}
	}
	grpcLn := ls.GRPC
	if grpcServer != nil && grpcLn == nil {
		grpcLn, err = listen(ctx, p.GRPCPortFromConfig(cfg))
		if err != nil {
			_ = httpLn.Close()
			runCleanup(logger, cleanup)
			flushOTEL(logger, metricsProvider, tracerProvider)
			return fmt.Errorf("listen grpc: %w", err)
		}
	}

	httpServer := &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Structured concurrency via errgroup ---
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server",
			slog.String("addr", httpLn.Addr().String()),
			slog.String("environment", cfg.Environment),
		)
		if serveErr := httpServer.Serve(httpLn); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", serveErr)
		}
		return nil
	})

	if grpcServer != nil {
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		g.Go(func() error {
			logger.Info("starting gRPC server", slog.String("addr", grpcLn.Addr().String()))
			if serveErr := grpcServer.Serve(grpcLn); serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
				return fmt.Errorf("serve grpc: %w", serveErr)
			}
			return nil
		})
	}

	// Shutdown trigger: waits for context cancellation, then drains in
	// reverse startup order.
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("received shutdown signal, starting graceful shutdown")

		// 1. Mark shutting down: health checks report unavailable
		shuttingDown.Store(true)
		if healthServer != nil {
			healthServer.Shutdown()
		}

		// 2. Drain delay: let load balancers observe the health change
		time.Sleep(domain.ShutdownDrainDelay)

		// 3. Stop servers
		if grpcServer != nil {
			stopGRPC(grpcServer, domain.ShutdownHTTPTimeout)
		}
		httpCtx, httpCancel := context.WithTimeout(context.Background(), domain.ShutdownHTTPTimeout)
		defer httpCancel()
		if shutdownErr := httpServer.Shutdown(httpCtx); shutdownErr != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", shutdownErr.Error()))
		}

		// 4. Release service resources
		runCleanup(logger, cleanup)

		// 5. Flush OTEL (metrics first, then tracer)
		flushOTEL(logger, metricsProvider, tracerProvider)

		logger.Info("shutdown complete")
		return nil
	})

	return g.Wait()
}

func listen(ctx context.Context, port int) (net.Listener, error) {
	return (&net.ListenConfig{}).Listen(ctx, "tcp", fmt.Sprintf(":%d", port))
}

// stopGRPC drains in-flight RPCs, forcing a stop after timeout.
func stopGRPC(s *grpc.Server, timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		s.Stop()
		<-done
	}
}

func runCleanup(logger *slog.Logger, cleanup func(context.Context) error) {
	if cleanup == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), domain.ShutdownHTTPTimeout)
	defer cancel()
	if err := cleanup(ctx); err != nil {
		logger.Error("setup cleanup error", slog.String("error", err.Error()))
	}
}

func flushOTEL(logger *slog.Logger, mp *observability.MetricsProvider, tp *observability.TracerProvider) {
	ctx, cancel := context.WithTimeout(context.Background(), domain.ShutdownOTELTimeout)
	defer cancel()
	if mp != nil {
		if err := mp.Shutdown(ctx); err != nil {
			logger.Error("failed to shutdown metrics", slog.String("error", err.Error()))
		}
	}
	if tp != nil {
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}
}

func closeListeners(ls Listeners) {
	if ls.HTTP != nil {
		_ = ls.HTTP.Close()
	}
	if ls.GRPC != nil {
		_ = ls.GRPC.Close()
	}
}
