// Package main is timectl, a command-line client that prints the current
// UTC instant read through any configured time source.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aelexs/timegate/internal/config"
	"github.com/aelexs/timegate/internal/domain"
	"github.com/aelexs/timegate/internal/observability"
	"github.com/aelexs/timegate/internal/timegate/adapter"
	"github.com/aelexs/timegate/internal/timegate/app"
	"github.com/aelexs/timegate/pkg/protocol"
)

// Exit codes let scripts branch on the failure kind.
const (
	exitOK         = 0
	exitError      = 1
	exitGateway    = 2
	exitProcessing = 3
)

// unitAll prints every reading as JSON.
const unitAll = "all"

// sourceOpener builds the time source for a loaded config.
type sourceOpener func(ctx context.Context, cfg *config.Config) (domain.TimeSource, func() error, error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, adapter.NewFromConfig))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, open sourceOpener) int {
	root := newRootCmd(open)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	_, _ = fmt.Fprintln(stderr, err)
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case domain.IsGatewayError(err):
		return exitGateway
	case domain.IsProcessingFailure(err):
		return exitProcessing
	}
	return exitError
}

func newRootCmd(open sourceOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "timectl",
		Short:         "Read the current UTC time from a timegate time source",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newNowCmd(open))
	return root
}

func newNowCmd(open sourceOpener) *cobra.Command {
	var unit, source, target, redisAddr string

	cmd := &cobra.Command{
		Use:   "now",
		Short: "Print the current instant since the Unix epoch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if unit != unitAll && !isUnit(domain.Unit(unit)) {
				return fmt.Errorf("%w: --unit %q (want ns|ms|s|all)", domain.ErrInvalidInput, unit)
			}

			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if source != "" {
				cfg.TimeSource.Kind = domain.TimeSourceKind(source)
			}
			if target != "" {
				cfg.Remote.Target = target
			}
			if redisAddr != "" {
				cfg.Redis.Addr = redisAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			src, closeSource, err := open(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open time source: %w", err)
			}
			defer func() { _ = closeSource() }()

			logger := slog.New(observability.NewRedactingHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: observability.ParseLevel(cfg.LogLevel),
			}))
			svc := app.NewTimeService(app.TimeServiceConfig{
				Source: src,
				Name:   string(cfg.TimeSource.Kind),
				Logger: logger,
			})

			ts, err := svc.Now(cmd.Context())
			if err != nil {
				return err
			}
			return printReading(cmd.OutOrStdout(), ts, unit)
		},
	}
	cmd.Flags().StringVar(&unit, "unit", unitAll, "reading to print: ns|ms|s|all")
	cmd.Flags().StringVar(&source, "source", "", "time source: system|unixclock|redis|remote (default from TIMESOURCE_KIND)")
	cmd.Flags().StringVar(&target, "target", "", "remote timegate gRPC target (overrides REMOTE_TARGET)")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "redis address (overrides REDIS_ADDR)")
	return cmd
}

func isUnit(u domain.Unit) bool {
	switch u {
	case domain.UnitNano, domain.UnitMilli, domain.UnitSec:
		return true
	}
	return false
}

func printReading(w io.Writer, ts domain.UTCTimestamp, unit string) error {
	if unit == unitAll {
		enc := json.NewEncoder(w)
		return enc.Encode(protocol.NewReading(ts))
	}
	v, err := ts.Reading(domain.Unit(unit))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, v)
	return err
}
