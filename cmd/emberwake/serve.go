// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/emberwake/emberwake/internal/account"
	"github.com/emberwake/emberwake/internal/account/names"
	acctpg "github.com/emberwake/emberwake/internal/account/postgres"
	"github.com/emberwake/emberwake/internal/config"
	"github.com/emberwake/emberwake/internal/locale"
	"github.com/emberwake/emberwake/internal/logging"
	"github.com/emberwake/emberwake/internal/mail"
	"github.com/emberwake/emberwake/internal/observability"
	"github.com/emberwake/emberwake/internal/web"
	"github.com/emberwake/emberwake/pkg/errutil"
)

const shutdownTimeout = 15 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Emberwake HTTP server",
		Long: `Start the HTTP server providing the registration and email
verification endpoints, plus a metrics and health endpoint on a
separate listener.`,
		RunE: runServe,
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	// Install as the process default so packages logging through
	// slog.Default carry the same service and trace attributes.
	logging.SetDefault("emberwake", version, cfg.Log.Format)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "create connection pool").Wrap(err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "ping database").Wrap(err)
	}

	obsServer := observability.NewServer(cfg.Observability.Addr, func() bool {
		return pool.Ping(ctx) == nil
	})
	obsErrCh, err := obsServer.Start()
	if err != nil {
		return err
	}

	catalog := locale.NewCatalog()
	svc := buildRegistrationService(cfg, pool, catalog, logger)
	handler := web.NewRegisterHandler(svc, catalog, obsServer.Metrics(), logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	handler.Mount(router)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	httpErrCh := make(chan error, 1)
	go func() {
		logger.Info("http server started", "addr", cfg.Server.Addr)
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			httpErrCh <- serveErr
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-httpErrCh:
		errutil.LogError(logger, "http server failed", err)
	case err := <-obsErrCh:
		errutil.LogError(logger, "observability server failed", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		errutil.LogError(logger, "http server shutdown failed", err)
	}
	if err := obsServer.Stop(shutdownCtx); err != nil {
		errutil.LogError(logger, "observability server shutdown failed", err)
	}

	// Let in-flight verification emails finish before the process exits.
	svc.Wait()

	logger.Info("server stopped")
	return nil
}

// buildRegistrationService wires the registration workflow from config.
func buildRegistrationService(cfg *config.Config, pool *pgxpool.Pool, catalog *locale.Catalog, logger *slog.Logger) *account.RegistrationService {
	policyCfg := names.DefaultConfig(cfg.Game.ProductName)
	if len(cfg.Game.BlockedPrefixes) > 0 {
		policyCfg.BlockedPrefixes = cfg.Game.BlockedPrefixes
	}
	if len(cfg.Game.BlockedPhrases) > 0 {
		policyCfg.BlockedPhrases = cfg.Game.BlockedPhrases
	}
	policy := names.NewPolicy(policyCfg, names.Messages{
		WrongType: catalog.T("name.type", nil),
		Length: catalog.T("name.length", locale.Params{
			"min": strconv.Itoa(names.MinLength),
			"max": strconv.Itoa(names.MaxLength),
		}),
		Casing:    catalog.T("name.casing", locale.Params{"example": "Alaric"}),
		Blocked:   catalog.T("name.blocked", nil),
		Malformed: catalog.T("name.malformed", nil),
		Taken:     catalog.T("name.taken", nil),
	}, acctpg.NewMonsterRepository(pool))

	notifier := mail.NewRetrying(mail.NewLogNotifier(logger), 3, 2*time.Second)

	return account.NewRegistrationService(
		acctpg.NewAccountRepository(pool),
		acctpg.NewCharacterRepository(pool),
		acctpg.NewVerificationRepository(pool),
		acctpg.NewRegistrationRepository(pool),
		account.NewStandardFactory(account.DefaultStartingStats),
		account.NewArgon2idHasher(),
		policy,
		notifier,
		catalog,
		logger,
	)
}
