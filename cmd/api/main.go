package main

import (
	"context"
	"fmt"
	"os"

	"gaming-ops-portal/config"
	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/relay"
	"gaming-ops-portal/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Gaming operations portal",
	Long: `Serves the operations portal: request forms, review dashboards and
the announcement feed, backed by Firestore or MongoDB with photo delivery
through Telegram or S3.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "./config", "directory holding config.yaml and .env")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is what every subcommand starts from.
type app struct {
	cfg   config.Config
	log   zerolog.Logger
	store database.Store
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log := logger.New(cfg.Server.Env, cfg.Log.Level)

	store, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not open %s store: %w", cfg.Store.Driver, err)
	}
	log.Info().Str("driver", cfg.Store.Driver).Msg("store opened")
	return &app{cfg: cfg, log: log, store: store}, nil
}

func (a *app) outbox(r relay.Relay) *relay.Outbox {
	return relay.NewOutbox(a.store, r, relay.OutboxConfig{
		SpoolDir:    a.cfg.Relay.SpoolDir,
		Interval:    a.cfg.Relay.OutboxInterval,
		MaxAttempts: a.cfg.Relay.MaxAttempts,
		Timeout:     a.cfg.Relay.Timeout,
	}, a.log.With().Str("component", "outbox").Logger())
}
