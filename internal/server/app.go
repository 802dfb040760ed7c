// Package server initializes and runs the docverify server: it opens the
// database, applies migrations, wires the optional object store and lookup
// cache, and runs the gRPC API next to the public HTTP endpoints until a
// termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/docverify/internal/logging"
	"github.com/dmitrijs2005/docverify/internal/server/config"
	"github.com/dmitrijs2005/docverify/internal/server/httpapi"
	"github.com/dmitrijs2005/docverify/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docverify/internal/server/services"
	"github.com/dmitrijs2005/docverify/internal/server/storage"
	"github.com/dmitrijs2005/docverify/internal/verification"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/docverify/internal/server/grpc"
)

var (
	sqlOpen        = sql.Open
	newRedisClient = redis.NewClient
	newS3Store     = func(ctx context.Context, c storage.S3Config) (storage.ObjectStore, error) {
		return storage.NewS3Store(ctx, c)
	}
)

type App struct {
	config           *config.Config
	logger           logging.Logger
	db               *sql.DB
	redis            *redis.Client
	codes            *verification.Generator
	userService      *services.UserService
	documentService  *services.DocumentService
	signatureService *services.SignatureService
	lookupService    *services.LookupService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogBackend)
	if err != nil {
		return nil, err
	}

	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	db, err := sqlOpen("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app := &App{config: c, logger: logger, db: db}

	m, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := m.RunMigrations(ctx, db); err != nil {
		app.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	store, err := app.initObjectStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	cache := app.initLookupCache(ctx)

	app.codes = verification.NewGenerator(verification.Config{
		BaseVerificationURL: c.BaseVerificationURL,
		Location:            loc,
	})

	app.userService = services.NewUserService(db, m, c)
	app.documentService = services.NewDocumentService(db, m, app.codes, store, logger)
	app.signatureService = services.NewSignatureService(db, m, app.codes, store, cache, logger)
	app.lookupService = services.NewLookupService(db, m, cache, logger)

	return app, nil
}

// initObjectStore returns nil when no bucket is configured.
func (app *App) initObjectStore(ctx context.Context) (storage.ObjectStore, error) {
	if app.config.S3Bucket == "" {
		app.logger.Info(ctx, "Object store disabled")
		return nil, nil
	}
	store, err := newS3Store(ctx, storage.S3Config{
		RootUser:     app.config.S3RootUser,
		RootPassword: app.config.S3RootPassword,
		Bucket:       app.config.S3Bucket,
		Region:       app.config.S3Region,
		BaseEndpoint: app.config.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}
	return store, nil
}

// initLookupCache returns nil when no Redis address is configured.
func (app *App) initLookupCache(ctx context.Context) services.LookupCache {
	if app.config.RedisAddr == "" {
		return nil
	}
	client := newRedisClient(&redis.Options{Addr: app.config.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		app.logger.Warn(ctx, "Redis unreachable, lookups bypass the cache until it recovers", "error", err)
	}
	app.redis = client
	app.logger.Info(ctx, "Lookup cache enabled", "address", app.config.RedisAddr, "ttl", app.config.LookupCacheTTL)
	return services.NewRedisLookupCache(client, app.config.LookupCacheTTL)
}

func (app *App) initSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
}

// Run serves until ctx is done, a signal arrives, or one of the servers
// fails. Either server failing stops the other.
func (app *App) Run(ctx context.Context) error {

	ctx, stop := app.initSignalHandler(ctx)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, gs.Services{
		Users:      app.userService,
		Documents:  app.documentService,
		Signatures: app.signatureService,
		Lookup:     app.lookupService,
	}, app.config.SecretKey)
	httpServer := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.lookupService, app.codes)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return grpcServer.Run(ctx) })
	g.Go(func() error { return httpServer.Run(ctx) })

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}

// Close releases the database and Redis connections.
func (app *App) Close() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
}
