// Package server initializes and runs the application: it opens the
// database, runs migrations, wires services onto the HTTP API, and handles
// graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/grouptab/grouptab/internal/logging"
	"github.com/grouptab/grouptab/internal/server/auth"
	"github.com/grouptab/grouptab/internal/server/config"
	"github.com/grouptab/grouptab/internal/server/httpapi"
	"github.com/grouptab/grouptab/internal/server/repositories/repomanager"
	"github.com/grouptab/grouptab/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	issuer := auth.NewIssuer([]byte(cfg.SecretKey),
		cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)

	userSvc := services.NewUserService(db, rm, issuer)
	groupSvc := services.NewGroupService(db, rm)
	ledgerSvc := services.NewLedgerService(db, rm, groupSvc)

	api := httpapi.NewServer(httpapi.Deps{
		Config:   cfg,
		Logger:   logger,
		Issuer:   issuer,
		Users:    userSvc,
		Groups:   groupSvc,
		Ledger:   ledgerSvc,
		Plans:    services.NewPlanService(db, rm, groupSvc, ledgerSvc),
		Events:   services.NewEventService(db, rm, groupSvc),
		Receipts: services.NewReceiptService(db, rm, ledgerSvc, cfg),
	})

	return &App{config: cfg, logger: logger, db: db, api: api}, nil
}

// Run serves until the context is cancelled or SIGINT/SIGTERM arrives,
// then drains in-flight requests and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		select {
		case <-sigs:
			cancel()
		case <-ctx.Done():
		}
	}()

	app.logger.Info(ctx, "starting app")

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.api.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			app.logger.Error(ctx, "http server failed", "error", err.Error())
		}
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		if err := app.api.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
		<-errCh
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
	app.logger.Info(ctx, "app stopped")
}
