package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/jwalitptl/mediqueue/internal/app"
	"github.com/jwalitptl/mediqueue/internal/config"
	"github.com/jwalitptl/mediqueue/internal/handler"
	authHandler "github.com/jwalitptl/mediqueue/internal/handler/auth"
	"github.com/jwalitptl/mediqueue/internal/handler/dashboard"
	"github.com/jwalitptl/mediqueue/internal/handler/doctor"
	"github.com/jwalitptl/mediqueue/internal/handler/health"
	"github.com/jwalitptl/mediqueue/internal/handler/leave"
	"github.com/jwalitptl/mediqueue/internal/handler/queue"
	"github.com/jwalitptl/mediqueue/internal/handler/settings"
	"github.com/jwalitptl/mediqueue/internal/handler/stream"
	"github.com/jwalitptl/mediqueue/internal/handler/token"
	"github.com/jwalitptl/mediqueue/internal/middleware"
	"github.com/jwalitptl/mediqueue/internal/repository/postgres"
	"github.com/jwalitptl/mediqueue/internal/router"
	authService "github.com/jwalitptl/mediqueue/internal/service/auth"
	"github.com/jwalitptl/mediqueue/pkg/auth"
	"github.com/jwalitptl/mediqueue/pkg/logger"
	"github.com/jwalitptl/mediqueue/pkg/security"
)

const shutdownTimeout = 15 * time.Second

func main() {
	var configPath string

	cliApp := &cli.App{
		Name:  "mediqueue-api",
		Usage: "Clinic token booking and live queue API.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Load configuration from `FILE`.",
				EnvVars:     []string{"MEDIQUEUE_CONFIG"},
				Destination: &configPath,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP API.",
				Action: func(cCtx *cli.Context) error {
					return serve(cCtx.Context, configPath)
				},
			},
			{
				Name:  "migrate",
				Usage: "Apply database migrations and exit.",
				Action: func(cCtx *cli.Context) error {
					return migrate(cCtx.Context, configPath)
				},
			},
			{
				Name:      "hash-password",
				Usage:     "Print a bcrypt hash for a staff account password.",
				ArgsUsage: "PASSWORD",
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 1 {
						return cli.Exit("exactly one password argument is required", 2)
					}
					hash, err := security.NewBcryptHasher(0).Hash(cCtx.Args().First())
					if err != nil {
						return err
					}
					fmt.Fprintln(cCtx.App.Writer, hash)
					return nil
				},
			},
		},
		DefaultCommand: "serve",
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("mediqueue-api exited")
	}
}

func loadConfig(path string) (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	l := logger.Setup(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return cfg, l, nil
}

func migrate(ctx context.Context, path string) error {
	cfg, l, err := loadConfig(path)
	if err != nil {
		return err
	}

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, l.ZL); err != nil {
		return err
	}
	l.Info("Migrations applied")
	return nil
}

func serve(ctx context.Context, path string) error {
	cfg, l, err := loadConfig(path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := postgres.Migrate(ctx, a.DB, l.ZL); err != nil {
		return err
	}

	if err := middleware.RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authSvc, err := authService.NewService(cfg.Auth.Users, security.NewBcryptHasher(0), jwtSvc)
	if err != nil {
		return fmt.Errorf("invalid auth configuration: %w", err)
	}
	if len(cfg.Auth.Users) == 0 {
		l.Warn("No staff users configured, admin and doctor routes are unreachable")
	}

	handlers := []handler.Handler{
		health.NewHandler(map[string]health.Pinger{
			"database": a.DB,
			"broker":   health.PingFunc(a.Broker.Ping),
		}, a.Registry),
		authHandler.NewHandler(authSvc),
		doctor.NewHandler(a.DoctorSvc),
		token.NewHandler(a.TokenSvc),
		queue.NewHandler(a.QueueSvc, a.TokenSvc),
		leave.NewHandler(a.LeaveSvc),
		settings.NewHandler(a.Settings),
		dashboard.NewHandler(a.DashboardSvc),
		stream.NewHandler(a.Broker, l.ZL),
	}

	r := router.NewRouter(middleware.NewAuthMiddleware(jwtSvc), router.RouterConfig{
		Mode:           cfg.Server.Mode,
		RequestTimeout: cfg.Server.RequestTimeout,
		RateLimit:      cfg.RateLimit,
		CORS:           cfg.CORS,
		MetricsPrefix:  "mediqueue",
		Registerer:     a.Registry,
	}, handlers...)
	r.Setup()

	// Events published in memory never leave this process, so the workers
	// have to run here too.
	workersDone := make(chan error, 1)
	if a.InProcessBroker() {
		go func() { workersDone <- a.RunWorkers(ctx) }()
	} else {
		close(workersDone)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r.Engine(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		l.Info("Starting server", "port", cfg.Server.Port, "timezone", cfg.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		stop()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	l.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if err := <-workersDone; err != nil {
		l.Error(err, "Background workers stopped with error")
	}
	l.Info("Server exited")
	return nil
}
