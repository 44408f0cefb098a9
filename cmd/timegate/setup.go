package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"

	apiv1 "github.com/aelexs/timegate/api/v1"
	"github.com/aelexs/timegate/internal/server"
	"github.com/aelexs/timegate/internal/timegate/adapter"
	"github.com/aelexs/timegate/internal/timegate/app"
	"github.com/aelexs/timegate/internal/timegate/port"
	"github.com/aelexs/timegate/pkg/protocol"
)

// setup is the timegate composition root. It builds the configured time
// source, the time service, and registers the gRPC and HTTP handlers.
func setup(ctx context.Context, deps server.SetupDeps) (func(context.Context) error, error) {
	cfg := deps.Config
	logger := deps.Logger

	// 1. Time source adapter.
	source, closeSource, err := adapter.NewFromConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("timegate setup: create time source: %w", err)
	}
	logger.Info("time source configured", slog.String("kind", string(cfg.TimeSource.Kind)))

	// 2. Time service.
	svc := app.NewTimeService(app.TimeServiceConfig{
		Source: source,
		Name:   string(cfg.TimeSource.Kind),
		Logger: logger,
	})

	// 3. Register gRPC + HTTP.
	protocol.RegisterTimeServiceServer(deps.GRPCServer, port.NewTimeHandler(svc))

	gwMux := runtime.NewServeMux()
	if err := port.NewHTTPHandler(svc, apiv1.Spec).Register(gwMux); err != nil {
		_ = closeSource()
		return nil, fmt.Errorf("timegate setup: register http routes: %w", err)
	}
	deps.HTTPMux.Handle("/", gwMux)

	return func(context.Context) error {
		if err := closeSource(); err != nil {
			return fmt.Errorf("close time source: %w", err)
		}
		return nil
	}, nil
}
