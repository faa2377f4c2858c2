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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/jwalitptl/mediqueue/internal/app"
	"github.com/jwalitptl/mediqueue/internal/config"
	"github.com/jwalitptl/mediqueue/pkg/logger"
)

func main() {
	var (
		configPath string
		healthAddr string
	)

	cliApp := &cli.App{
		Name:  "mediqueue-worker",
		Usage: "Publishes queued events, sends notifications and cancels overdue tokens.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Load configuration from `FILE`.",
				EnvVars:     []string{"MEDIQUEUE_CONFIG"},
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "health-addr",
				Usage:       "Serve liveness and metrics on `ADDR`.",
				Value:       ":8081",
				Destination: &healthAddr,
			},
		},
		Action: func(cCtx *cli.Context) error {
			return run(cCtx.Context, configPath, healthAddr)
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("mediqueue-worker exited")
	}
}

func run(ctx context.Context, configPath, healthAddr string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	l := logger.Setup(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.InProcessBroker() {
		return errors.New("the worker needs redis.url; without Redis the API runs the workers itself")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := a.DB.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		if err := a.Broker.Ping(r.Context()); err != nil {
			http.Error(w, "broker unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: healthAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error(err, "Health server failed")
		}
	}()

	l.Info("Starting workers", "health_addr", healthAddr)
	workerErr := a.RunWorkers(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error(err, "Failed to stop health server")
	}

	l.Info("Workers stopped")
	return workerErr
}
