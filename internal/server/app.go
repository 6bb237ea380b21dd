// Package server initializes and runs the application server: database and
// migrations, the optional Redis cache, the change-feed listener, and the
// HTTP/WebSocket endpoint, with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/synscript/synscript/internal/logging"
	"github.com/synscript/synscript/internal/server/config"
	"github.com/synscript/synscript/internal/server/httpapi"
	"github.com/synscript/synscript/internal/server/ratelimit"
	"github.com/synscript/synscript/internal/server/rbac"
	"github.com/synscript/synscript/internal/server/realtime"
	"github.com/synscript/synscript/internal/server/repositories/repomanager"
	"github.com/synscript/synscript/internal/server/rolecache"
	"github.com/synscript/synscript/internal/server/services"
	"github.com/synscript/synscript/internal/server/storage"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	httpSrv  *http.Server
	listener *realtime.Listener
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	manager := repomanager.NewPostgresRepositoryManager()
	if err := manager.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	// Redis is optional: without it the role cache degrades to misses and
	// the rate limiter lets everything through.
	var cache rolecache.Cache = rolecache.NewNoopCache()
	var limiter ratelimit.Limiter = ratelimit.NewNoopLimiter()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		cache = rolecache.NewRedisCache(client, logger, cfg.CacheOpTimeout)
		limiter = ratelimit.NewRedisLimiter(client, cfg.RateLimitRequests, cfg.RateLimitWindow, cfg.CacheOpTimeout, logger)
	}

	audit := services.NewAuditService(db, manager, logger)
	invites := services.NewInviteService(db, manager, audit, logger)
	users := services.NewUserService(db, manager, invites, cfg, logger)
	vaults := services.NewVaultService(db, manager, cache, audit)
	members := services.NewMemberService(db, manager, cache, audit)
	sources := services.NewSourceService(db, manager, storage.New(cfg), audit, logger)
	annotations := services.NewAnnotationService(db, manager, audit)
	comments := services.NewCommentService(db, manager, audit)

	resolver := rbac.NewResolver(manager.Members(db), cache, cfg.RoleCacheTTL)

	hub := realtime.NewHub()
	presence := realtime.NewPresence(hub)
	listener := realtime.NewListener(cfg.DatabaseDSN, hub, logger)

	api := httpapi.NewServer(cfg, logger, users, vaults, members, sources, annotations, comments, audit, resolver, hub, presence, limiter)

	httpSrv := &http.Server{
		Addr:    cfg.EndpointAddrHTTP,
		Handler: api.Router(),
	}

	return &App{
		config:   cfg,
		logger:   logger,
		db:       db,
		httpSrv:  httpSrv,
		listener: listener,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.listener.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	app.logger.Info(ctx, "Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.httpSrv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, err.Error())
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), err.Error())
	}
}
