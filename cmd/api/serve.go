package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"gaming-ops-portal/internal/announcement"
	"gaming-ops-portal/internal/api/handlers"
	"gaming-ops-portal/internal/api/routes"
	"gaming-ops-portal/internal/auth"
	"gaming-ops-portal/internal/dashboard"
	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/relay"
	"gaming-ops-portal/internal/socket"
	"gaming-ops-portal/internal/submission"
	"gaming-ops-portal/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portal web server and the relay outbox worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.store.Close()

	if a.cfg.Seed.AdminEmail != "" {
		if err := database.SeedAdmin(ctx, a.store, a.cfg.Seed.AdminEmail, a.cfg.Seed.AdminPassword, a.log); err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
	}

	rl, err := relay.Open(ctx, a.cfg, a.store)
	if err != nil {
		return fmt.Errorf("could not open %s relay: %w", a.cfg.Relay.Driver, err)
	}
	a.log.Info().Str("relay", rl.Name()).Msg("relay ready")
	outbox := a.outbox(rl)

	if a.cfg.Server.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	renderer, err := view.NewRenderer()
	if err != nil {
		return fmt.Errorf("could not parse templates: %w", err)
	}
	sessions := auth.NewSessions()
	hub := socket.NewHub(a.log.With().Str("component", "hub").Logger())
	portal := &handlers.Portal{
		Store:     a.store,
		Renderer:  renderer,
		Feed:      dashboard.NewFeed(a.store, renderer, hub, sessions, a.log.With().Str("component", "feed").Logger()),
		Announcer: announcement.NewBuilder(a.store, a.log.With().Str("component", "announcements").Logger()),
		Log:       a.log,
	}
	router := routes.SetupRouter(routes.Deps{
		Portal:      portal,
		Signer:      auth.NewSigner(a.cfg.JWT.Secret, a.cfg.TokenTTL()),
		Sessions:    sessions,
		Submissions: submission.NewService(a.store, rl, outbox, a.cfg.Relay.Timeout, a.log.With().Str("component", "submission").Logger()),
		Relay:       rl,
		Hub:         hub,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		Log:         a.log,
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info().Str("port", a.cfg.Server.Port).Msg("starting portal server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return outbox.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
