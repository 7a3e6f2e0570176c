// Package server wires the sync server together: configuration, logging,
// Postgres storage with migrations, services, and the HTTP API. It runs
// until a termination signal arrives and then shuts down gracefully.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/kentxun/anymind/internal/logging"
	"github.com/kentxun/anymind/internal/server/config"
	"github.com/kentxun/anymind/internal/server/httpapi"
	"github.com/kentxun/anymind/internal/server/repositories/repomanager"
	"github.com/kentxun/anymind/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *httpapi.Server
	closer io.Closer
}

// openDB is a seam for tests.
var openDB = repomanager.Open

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	var w io.Writer = os.Stdout
	var closer io.Closer
	if c.LogFile != "" {
		fw := logging.NewFileWriter(c.LogFile)
		w, closer = fw, fw
	}
	logger := logging.New(w, logging.ParseLevel(c.LogLevel), true)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	spaces := services.NewSpaceService(db, rm)
	sync := services.NewSyncService(db, rm, c.PullLimitMax)

	return &App{
		config: c,
		logger: logger,
		db:     db,
		http:   httpapi.NewServer(c, logger, spaces, sync),
		closer: closer,
	}, nil
}

// Run serves until SIGINT/SIGTERM/SIGQUIT or ctx cancellation.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.close()

	app.logger.Info(ctx, "Starting app...")

	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server error", "error", err)
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}

func (app *App) close() {
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
	if app.closer != nil {
		_ = app.closer.Close()
	}
}
