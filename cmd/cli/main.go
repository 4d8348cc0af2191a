// Command cli inspects a user's signals, persona and what-if scenarios
// from the command line, and uploads ledger snapshots.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dvloznov/spendsense/internal/config"
	"github.com/dvloznov/spendsense/internal/gcs"
	infraBQ "github.com/dvloznov/spendsense/internal/infra/bigquery"
	"github.com/dvloznov/spendsense/internal/insights"
	"github.com/dvloznov/spendsense/internal/ledger"
	"github.com/dvloznov/spendsense/internal/logger"
)

const commandTimeout = 5 * time.Minute

func main() {
	if err := newRootCmd(defaultDeps()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// ledgerWriter replaces a user's stored ledger.
type ledgerWriter interface {
	ReplaceUserLedger(ctx context.Context, snap ledger.Snapshot) error
	Close() error
}

// deps are the external clients commands open on demand.
type deps struct {
	openStore  func(ctx context.Context) (gcs.ObjectStore, func() error, error)
	openWriter func(ctx context.Context, project, dataset string) (ledgerWriter, error)
}

func defaultDeps() deps {
	return deps{
		openStore: func(ctx context.Context) (gcs.ObjectStore, func() error, error) {
			c, err := gcs.NewClient(ctx)
			if err != nil {
				return nil, nil, err
			}
			return c, c.Close, nil
		},
		openWriter: func(ctx context.Context, project, dataset string) (ledgerWriter, error) {
			return infraBQ.NewLedgerRepository(ctx, project, dataset)
		},
	}
}

// app carries the global flags shared by every command.
type app struct {
	deps deps

	configPath string
	ledgerPath string
	windowDays int
	logLevel   string

	log zerolog.Logger
}

func newRootCmd(d deps) *cobra.Command {
	a := &app{deps: d}

	cmd := &cobra.Command{
		Use:           "spendsense",
		Short:         "Behavioral signals, personas and what-if scenarios for a user's ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.NewWithOptions(cmd.ErrOrStderr(), logger.Options{Level: a.logLevel})
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", os.Getenv("SPENDSENSE_CONFIG"), "YAML config file")
	flags.StringVar(&a.ledgerPath, "ledger", "", "read ledgers from this snapshot file instead of the configured source")
	flags.IntVar(&a.windowDays, "window", 0, "signal window in days (defaults to config)")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		a.signalsCmd(),
		a.personaCmd(),
		a.whatifCmd(),
		a.uploadCmd(),
	)
	return cmd
}

func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.ledgerPath != "" {
		cfg.Ledger.Source = config.SourceFile
		cfg.Ledger.Path = a.ledgerPath
	}
	if a.windowDays > 0 {
		cfg.Signals.WindowDays = a.windowDays
	}
	return cfg, nil
}

// service opens the configured ledger source and wraps it in a service.
func (a *app) service(ctx context.Context) (*insights.Service, func(), error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	var store gcs.ObjectStore
	closeStore := func() error { return nil }
	if cfg.Ledger.Source == config.SourceGCS {
		store, closeStore, err = a.deps.openStore(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("open object store: %w", err)
		}
	}

	source, closeSource, err := insights.OpenSource(ctx, cfg.Ledger, store)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	cleanup := func() {
		if err := closeSource(); err != nil {
			a.log.Warn().Err(err).Msg("Failed to close ledger source")
		}
		if err := closeStore(); err != nil {
			a.log.Warn().Err(err).Msg("Failed to close object store")
		}
	}
	return insights.NewService(source, cfg.Signals.WindowDays, a.log), cleanup, nil
}

// withService runs fn against a service bound to a command-scoped context.
func (a *app) withService(cmd *cobra.Command, fn func(ctx context.Context, svc *insights.Service) (interface{}, error)) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()
	ctx = logger.WithContext(ctx, a.log)

	svc, cleanup, err := a.service(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	out, err := fn(ctx, svc)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) signalsCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "signals",
		Short: "Detect behavioral signals for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *insights.Service) (interface{}, error) {
				return svc.Signals(ctx, userID)
			})
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func (a *app) personaCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "persona",
		Short: "Assign a persona to a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *insights.Service) (interface{}, error) {
				report, err := svc.Persona(ctx, userID)
				if err != nil {
					return nil, err
				}
				return report.Assignment, nil
			})
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
