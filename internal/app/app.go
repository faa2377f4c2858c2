package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jwalitptl/mediqueue/internal/config"
	"github.com/jwalitptl/mediqueue/internal/email"
	"github.com/jwalitptl/mediqueue/internal/repository"
	"github.com/jwalitptl/mediqueue/internal/repository/postgres"
	"github.com/jwalitptl/mediqueue/internal/service/clock"
	"github.com/jwalitptl/mediqueue/internal/service/dashboard"
	"github.com/jwalitptl/mediqueue/internal/service/doctor"
	"github.com/jwalitptl/mediqueue/internal/service/event"
	"github.com/jwalitptl/mediqueue/internal/service/leave"
	"github.com/jwalitptl/mediqueue/internal/service/notification"
	"github.com/jwalitptl/mediqueue/internal/service/queue"
	"github.com/jwalitptl/mediqueue/internal/service/settings"
	"github.com/jwalitptl/mediqueue/internal/service/token"
	"github.com/jwalitptl/mediqueue/internal/worker"
	"github.com/jwalitptl/mediqueue/pkg/logger"
	"github.com/jwalitptl/mediqueue/pkg/messaging"
	"github.com/jwalitptl/mediqueue/pkg/messaging/redis"
	"github.com/jwalitptl/mediqueue/pkg/metrics"
)

const settingsCacheTTL = 30 * time.Second

// App holds the shared infrastructure and services both binaries run on.
type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *sqlx.DB
	Broker   messaging.Broker
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Clock    clock.Clock

	Tx      repository.TxManager
	Tokens  repository.TokenRepository
	Outbox  repository.OutboxRepository
	Doctors repository.DoctorRepository
	Leaves  repository.LeaveRepository

	Settings     *settings.Service
	DoctorSvc    *doctor.Service
	TokenSvc     *token.Service
	QueueSvc     *queue.Service
	LeaveSvc     *leave.Service
	DashboardSvc *dashboard.Service
	Notifier     notification.Service
}

// New connects to Postgres and the broker and builds every service. An empty
// Redis URL selects the in-process broker.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics("mediqueue", reg)

	broker, err := newBroker(cfg.Redis, log, m)
	if err != nil {
		db.Close()
		return nil, err
	}
	clk := clock.New(cfg.Location())

	base := postgres.NewBaseRepository(db)
	a := &App{
		Config:   cfg,
		Logger:   log,
		DB:       db,
		Broker:   broker,
		Registry: reg,
		Metrics:  m,
		Clock:    clk,
		Tx:       postgres.NewTxManager(base),
		Tokens:   postgres.NewTokenRepository(base),
		Outbox:   postgres.NewOutboxRepository(base),
		Doctors:  postgres.NewDoctorRepository(base),
		Leaves:   postgres.NewLeaveRepository(base),
	}

	events := event.NewEventService(a.Outbox)
	links := notification.NewLinkBuilder(cfg.Notification.CountryCode)

	a.Settings = settings.NewService(postgres.NewSettingsRepository(base), a.Tx, events, settingsCacheTTL)
	a.DoctorSvc = doctor.NewService(a.Doctors, a.Tx, events)
	a.TokenSvc = token.NewService(a.Tx, a.Doctors, a.Tokens, events, a.Settings, links, clk, m)
	a.QueueSvc = queue.NewService(a.Tx, a.Tokens, a.TokenSvc, clk)
	a.LeaveSvc = leave.NewService(a.Tx, a.Leaves, a.Doctors, a.Tokens, a.TokenSvc, events)
	a.DashboardSvc = dashboard.NewService(a.Doctors, a.Tokens, a.Leaves, clk)
	a.Notifier = notification.NewService(
		email.NewService(cfg.SMTP, log.ZL),
		links,
		a.Settings,
		m,
		log.ZL,
	)

	return a, nil
}

func newBroker(cfg config.RedisConfig, log *logger.Logger, m *metrics.Metrics) (messaging.Broker, error) {
	if cfg.URL == "" {
		log.Warn("No Redis URL configured, using in-process broker")
		return messaging.NewMemoryBroker(
			messaging.WithLogger(log.ZL),
			messaging.WithDropCounter(m.BrokerMessagesDropped),
		), nil
	}

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.URL,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	}, log.ZL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return broker, nil
}

// InProcessBroker reports whether events only reach subscribers in this process.
func (a *App) InProcessBroker() bool {
	_, ok := a.Broker.(*messaging.MemoryBroker)
	return ok
}

func (a *App) Close() {
	if err := a.Broker.Close(); err != nil {
		a.Logger.Error(err, "Failed to close broker")
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Error(err, "Failed to close database")
	}
}

// RunWorkers runs the background jobs until ctx is cancelled.
func (a *App) RunWorkers(ctx context.Context) error {
	wc := a.Config.Worker

	processor, err := worker.NewOutboxProcessor(a.Outbox, a.Tx, a.Broker, worker.OutboxProcessorConfig{
		BatchSize:    wc.OutboxBatchSize,
		PollInterval: wc.OutboxPollInterval,
		MaxRetries:   wc.OutboxMaxRetries,
	}, a.Logger, a.Metrics)
	if err != nil {
		return fmt.Errorf("failed to create outbox processor: %w", err)
	}

	cleanup := worker.NewOutboxCleanupWorker(a.Outbox, wc.OutboxRetention, time.Hour, a.Logger)
	canceller := worker.NewAutoCanceller(a.Tx, a.Tokens, a.TokenSvc, a.Settings, a.Clock, wc.AutoCancelInterval, a.Logger)
	consumer := worker.NewNotificationConsumer(a.Broker, a.Notifier, a.Settings, a.Logger)

	var wg sync.WaitGroup
	errCh := make(chan error, 1)
	for _, run := range []func(context.Context){processor.Start, cleanup.Start, canceller.Start} {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			run(ctx)
		}(run)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := consumer.Run(ctx); err != nil {
			errCh <- err
		}
	}()

	wg.Wait()
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
