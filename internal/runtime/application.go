// Package runtime wires configuration, storage, services and the HTTP server
// into a runnable application.
package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/caseflow/intake/internal/config"
	"github.com/caseflow/intake/internal/httpapi"
	"github.com/caseflow/intake/internal/middleware"
	"github.com/caseflow/intake/internal/services/cases"
	"github.com/caseflow/intake/internal/services/intake"
	"github.com/caseflow/intake/internal/services/runs"
	"github.com/caseflow/intake/internal/storage"
	"github.com/caseflow/intake/internal/storage/memory"
	"github.com/caseflow/intake/internal/storage/postgres"
	"github.com/caseflow/intake/internal/storage/redisstore"
	"github.com/caseflow/intake/internal/survey"
	"github.com/caseflow/intake/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// Application is the assembled service.
type Application struct {
	cfg     *config.Config
	logger  *logger.Logger
	server  *http.Server
	janitor *runs.Janitor
	db      *sql.DB
	redis   *redis.Client
}

// NewApplication builds the application from configuration: questionnaire,
// stores, services, HTTP routes and the janitor.
func NewApplication(cfg *config.Config) (*Application, error) {
	log := logger.New(logger.LoggingConfig(cfg.Logging)).WithService("caseflow-intake")

	def, err := survey.LoadDefinitionOrDefault(cfg.Survey.DefinitionPath, cfg.Survey.Version)
	if err != nil {
		return nil, err
	}
	engine := survey.NewEngine(def)

	app := &Application{cfg: cfg, logger: log}

	var (
		runStore  storage.RunStore
		caseStore storage.CaseStore
	)
	if cfg.Database.DSN != "" {
		db, err := openDatabase(cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		store := postgres.New(db)
		runStore, caseStore = store, store
		app.db = db
		log.Info("using postgres storage")
	} else {
		store := memory.New()
		runStore, caseStore = store, store
		log.Info("using in-memory storage")
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		runStore = redisstore.NewRunStore(client, cfg.Redis.RunTTL)
		app.redis = client
		log.Info("using redis run storage")
	}

	caseSvc := cases.NewService(caseStore, log)
	intakeSvc := intake.NewService(caseSvc, log)
	runSvc := runs.NewService(engine, runStore, log)
	app.janitor = runs.NewJanitor(runStore, log, cfg.Janitor.Schedule, cfg.Janitor.MaxRunIdle)

	router := mux.NewRouter()
	router.Use(
		middleware.Logging(log),
		middleware.Metrics(),
		middleware.CORS(),
		middleware.NewRateLimiter(cfg.RateLimit, def.Version).Middleware(),
	)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	handler := httpapi.NewHandler(runSvc, caseSvc, intakeSvc, def.Version, log)
	handler.Register(router, middleware.NewAuth(cfg.Auth, def.Version).Middleware())

	app.server = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return app, nil
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Run serves HTTP until the context is cancelled or the listener fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.janitor.Start(); err != nil {
		return fmt.Errorf("start janitor: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.WithField("addr", a.server.Addr).Info("http server listening")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown drains the server and releases resources.
func (a *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.server.Shutdown(ctx); err != nil {
		firstErr = err
	}
	a.janitor.Stop()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.logger.Info("shutdown complete")
	return firstErr
}
