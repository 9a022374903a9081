// Package app wires configuration, storage, the Telegram transport and the
// services together, and runs the HTTP, gRPC and scheduler loops until a
// shutdown signal arrives.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/cyclekeeper/internal/config"
	"github.com/dmitrijs2005/cyclekeeper/internal/httpserver"
	"github.com/dmitrijs2005/cyclekeeper/internal/logging"
	"github.com/dmitrijs2005/cyclekeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/cyclekeeper/internal/scheduler"
	"github.com/dmitrijs2005/cyclekeeper/internal/services"
	"github.com/dmitrijs2005/cyclekeeper/internal/telegram"

	gs "github.com/dmitrijs2005/cyclekeeper/internal/grpc"
)

const shutdownTimeout = 5 * time.Second

var _ services.Transport = (*telegram.Bot)(nil)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	dispatcher *services.Dispatcher
	handler    http.Handler
}

// Services bundles what both the server and the admin CLI build on top of
// an open database.
type Services struct {
	Repos      repomanager.RepositoryManager
	Bot        *services.BotService
	Dispatcher *services.Dispatcher
	Telegram   *telegram.Bot
}

// NewServices constructs the services over db without touching the schema.
func NewServices(db *sql.DB, cfg *config.Config, logger logging.Logger) *Services {
	rm := repomanager.NewPostgresRepositoryManager()
	tg := telegram.NewBot(cfg.TelegramToken, cfg.TelegramAPIURL)
	exporter := services.NewExportService(cfg)

	return &Services{
		Repos:      rm,
		Bot:        services.NewBotService(db, rm, tg, exporter, cfg, logger),
		Dispatcher: services.NewDispatcher(db, rm, tg, cfg, logger),
		Telegram:   tg,
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	if err := c.ValidateServer(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	db, err := OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	svc := NewServices(db, c, logger)
	if err := svc.Repos.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	h := httpserver.New(svc.Bot, svc.Dispatcher, svc.Telegram, httpserver.Options{
		WebhookSecret: c.WebhookSecret,
		CronSecret:    c.CronSecret,
	}, logger)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		dispatcher: svc.Dispatcher,
		handler:    h,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(context.Background(), "Stopping HTTP server...")
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startScheduler(ctx context.Context, cancelFunc context.CancelFunc) {
	loc, _ := app.config.Location()
	s := scheduler.NewService(app.dispatcher, loc, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives or one of the loops fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "owner_chat_id", app.config.OwnerChatID, "timezone", app.config.Timezone)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.GRPCAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	if app.config.InternalScheduler {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startScheduler(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
