package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/ethalive/internal/core/config"
	"github.com/vietddude/ethalive/internal/core/domain"
	"github.com/vietddude/ethalive/internal/core/worker"
	"github.com/vietddude/ethalive/internal/health"
	"github.com/vietddude/ethalive/internal/infra/notify"
	redisclient "github.com/vietddude/ethalive/internal/infra/redis"
	"github.com/vietddude/ethalive/internal/infra/rpc"
	"github.com/vietddude/ethalive/internal/infra/storage"
	"github.com/vietddude/ethalive/internal/infra/storage/memory"
	"github.com/vietddude/ethalive/internal/infra/storage/postgres"
	"github.com/vietddude/ethalive/internal/watchdog"
)

const (
	localName  = "local"
	remoteName = "remote"
)

// App wires the watchdog with its optional storage, status and HTTP components.
type App struct {
	cfg          *config.AppConfig
	watchdog     *watchdog.Watchdog
	rpcClient    *rpc.Client
	history      storage.CheckRepository
	pruner       *worker.Pruner
	healthMon    *health.Monitor
	healthServer *health.Server
	db           *postgres.DB
	redisClient  *redisclient.Client
	log          *slog.Logger

	done chan struct{}
}

// Option customizes NewApp.
type Option func(*options)

type options struct {
	notifier notify.Notifier
}

// WithNotifier replaces the configured webhook. Pass notify.Nop{} to run
// cycles without delivering alerts.
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// NewApp creates the application with all dependencies initialized.
// Postgres and Redis are optional: a connection failure disables the
// component instead of failing startup.
func NewApp(cfg *config.AppConfig, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := slog.Default()

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// 1. Initialize Storage
	var history storage.CheckRepository
	var db *postgres.DB
	if cfg.Database.URL != "" {
		var err error
		db, err = openDatabase(cfg.Database)
		if err != nil {
			log.Warn("Failed to initialize database, using memory history", "error", err)
			db = nil
		} else {
			history = postgres.NewCheckRepo(db)
			log.Info("Using PostgreSQL history storage")
		}
	}
	if history == nil {
		history = memory.NewCheckRepo(cfg.History.MaxMemory)
		log.Info("Using memory history storage", "max_records", cfg.History.MaxMemory)
	}

	// 2. Initialize Redis status snapshot
	var redisClient *redisclient.Client
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, status snapshot disabled", "error", err)
			redisClient = nil
		} else {
			log.Info("Publishing status snapshots to Redis")
		}
	}

	// 3. Initialize RPC client and notifier
	rpcClient := rpc.NewClient(cfg.Watchdog.RPCTimeout)
	notifier := o.notifier
	if notifier == nil {
		webhook := notify.NewWebhook(cfg.Alert.WebhookURL, cfg.Alert.Timeout)
		if !webhook.Enabled() {
			log.Warn("Webhook not configured, alerts will only be logged")
		}
		notifier = webhook
	}

	// 4. Initialize Health Monitor
	healthMon := health.NewMonitor(
		[]string{remoteName, localName},
		rpcClient,
		3*cfg.Watchdog.PollInterval,
	)
	if db != nil {
		healthMon.AddDependency("postgres", db.Health)
	}
	if redisClient != nil {
		healthMon.AddDependency("redis", redisClient.Ping)
	}
	healthServer := health.NewServer(healthMon, cfg.Server.Port)

	// 5. Assemble the watchdog
	observers := []watchdog.Observer{healthMon, storage.Recorder{Repo: history}}
	if redisClient != nil {
		observers = append(observers, redisClient)
	}

	wd := watchdog.New(watchdog.Config{
		Local:                    rpc.Endpoint{Name: localName, URL: cfg.Watchdog.LocalURL},
		Remote:                   rpc.Endpoint{Name: remoteName, URL: cfg.Watchdog.RemoteURL},
		LagThreshold:             cfg.Watchdog.LagThreshold,
		PollInterval:             cfg.Watchdog.PollInterval,
		AlertCooldown:            cfg.Alert.Cooldown,
		AlertOnRemoteUnreachable: cfg.Alert.AlertOnRemoteUnreachable,
	}, rpcClient, notifier, observers...)

	var pruner *worker.Pruner
	if cfg.History.Retention > 0 {
		pruner = worker.NewPruner(cfg.History.Retention, history)
	}

	return &App{
		cfg:          cfg,
		watchdog:     wd,
		rpcClient:    rpcClient,
		history:      history,
		pruner:       pruner,
		healthMon:    healthMon,
		healthServer: healthServer,
		db:           db,
		redisClient:  redisClient,
		log:          log,
		done:         make(chan struct{}),
	}, nil
}

func openDatabase(cfg postgres.Config) (*postgres.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.NewDB(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init db: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Start starts the watchdog loop and its supporting components.
func (a *App) Start(ctx context.Context) error {
	// Start Health Server
	go func() {
		if err := a.healthServer.Start(); err != nil {
			a.log.Error("Health server failed", "error", err)
		}
	}()

	// Start DB Metrics Collector
	if a.db != nil {
		a.db.StartMetricsCollector(ctx)
	}

	// Start Pruner
	if a.pruner != nil {
		a.log.Info("Starting history pruner", "retention", a.cfg.History.Retention)
		go a.pruner.Start(ctx)
	}

	go func() {
		defer close(a.done)
		_ = a.watchdog.Run(ctx)
	}()

	return nil
}

// RunOnce executes a single watchdog cycle.
func (a *App) RunOnce(ctx context.Context) domain.Check {
	return a.watchdog.RunCycle(ctx)
}

// History returns the check repository in use.
func (a *App) History() storage.CheckRepository {
	return a.history
}

// Stop waits for the loop to exit and releases resources. The context passed
// to Start must already be cancelled.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping ethalive...")

	select {
	case <-a.done:
	case <-ctx.Done():
		a.log.Warn("Timed out waiting for watchdog loop to exit")
	}

	a.Close()

	// Stop Health Server
	return a.healthServer.Stop(ctx)
}

// Close releases connections without touching the HTTP server.
func (a *App) Close() {
	_ = a.rpcClient.Close()

	// Close Redis
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}
}
