// Package main is the entrypoint for the timegate service.
// Timegate serves the current UTC instant over gRPC and HTTP.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aelexs/timegate/internal/config"
	"github.com/aelexs/timegate/internal/server"
)

func main() {
	ctx := context.Background()
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	return server.Run(ctx, server.Params{
		Name:               "timegate",
		PortFromConfig:     func(cfg *config.Config) int { return cfg.TimeGate.HTTPPort },
		GRPCPortFromConfig: func(cfg *config.Config) int { return cfg.TimeGate.GRPCPort },
		Setup:              setup,
	}, server.Listeners{})
}
