package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"splitledger/internal/api"
	"splitledger/internal/auth"
	"splitledger/internal/config"
	"splitledger/internal/notify"
	"splitledger/internal/service"
	"splitledger/internal/storage/sqlite"
	"splitledger/pkg/logging"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "splitledger",
		Short: "Group expense ledger and settlement engine",
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	serve.Flags().StringVarP(&configPath, "config", "c", "splitledger.toml", "path to TOML config file")
	root.AddCommand(serve)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log.Level)

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", cfg.Database.Path)

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.AMQP.Enabled {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			// Best-effort channel: a dead broker must not keep the
			// settlement engine from serving.
			slog.Warn("AMQP notifier unavailable, falling back to log notifier", "error", err)
		} else {
			defer amqpNotifier.Close()
			notifier = amqpNotifier
			slog.Info("AMQP notifier connected", "exchange", cfg.AMQP.Exchange)
		}
	}

	ttl, err := cfg.TokenTTL()
	if err != nil {
		return err
	}
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, ttl)
	authenticator := auth.NewPasswordAuthenticator(store)

	server := api.NewServer(
		store,
		service.NewSettlementService(store, notifier),
		service.NewAuthService(authenticator, jwtManager),
		jwtManager,
	)
	if cfg.Metrics.Enabled {
		server.EnableMetrics()
	}

	// h2c lets polling clients multiplex over cleartext HTTP/2.
	handler := h2c.NewHandler(server.Handler(), &http2.Server{})
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "address", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server failed", "error", err)
		return err
	}
	return nil
}
