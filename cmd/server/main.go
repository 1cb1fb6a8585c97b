package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	artifactstore "onboard/internal/artifact/store"
	"onboard/internal/assistant"
	employeehandler "onboard/internal/employee/handler"
	employeeservice "onboard/internal/employee/service"
	employeestore "onboard/internal/employee/store"
	"onboard/internal/mailer"
	"onboard/internal/pipeline"
	pipelinehandler "onboard/internal/pipeline/handler"
	"onboard/internal/pipeline/lock"
	pipelineservice "onboard/internal/pipeline/service"
	"onboard/internal/pipeline/step"
	"onboard/internal/platform/config"
	"onboard/internal/platform/httpserver"
	"onboard/internal/platform/logger"
	"onboard/internal/platform/metrics"
	"onboard/internal/platform/middleware"
	"onboard/internal/platform/postgres"
	"onboard/internal/platform/redis"
	runlogstore "onboard/internal/runlog/store"
	"onboard/pkg/platform/tx"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal packages.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Stores: postgres when DATABASE_URL is set, in-memory otherwise.
	var (
		db            *sql.DB
		employees     employeestore.Store
		accounts      artifactstore.AccountStore
		events        artifactstore.EventStore
		notifications artifactstore.NotificationStore
		runlogs       runlogstore.Store
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		employees = employeestore.NewPostgres(db)
		accounts = artifactstore.NewPostgresAccounts(db)
		events = artifactstore.NewPostgresEvents(db)
		notifications = artifactstore.NewPostgresNotifications(db)
		runlogs = runlogstore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		employees = employeestore.NewInMemory()
		accounts = artifactstore.NewInMemoryAccounts()
		events = artifactstore.NewInMemoryEvents()
		notifications = artifactstore.NewInMemoryNotifications()
		runlogs = runlogstore.NewInMemory()
		log.Info("using in-memory stores")
	}

	// Run lock: redis when configured, single-process fallback otherwise.
	var locker lock.Locker = lock.NewInMemory()
	redisClient, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		locker, err = lock.NewRedis(redisClient)
		if err != nil {
			return err
		}
		log.Info("using redis run lock")
	}

	assist := assistant.New(cfg.Assistant, assistant.WithLogger(log), assistant.WithMetrics(m))

	var transport mailer.Transport = mailer.NewSMTP(cfg.SMTP)
	if cfg.SimulateIntegrations {
		transport = mailer.NewConsole(log)
		log.Info("simulate mode: notifications go to the log")
	}

	schedule, err := step.NewSchedule(employees, events, runlogs, assist, step.ScheduleConfig{
		TimeZone: cfg.DefaultTimeZone,
		Location: cfg.DefaultLocation,
		Simulate: cfg.SimulateIntegrations,
	}, step.WithLogger(log), step.WithMetrics(m))
	if err != nil {
		return err
	}
	validate, err := step.NewValidate(employees, runlogs, assist, step.WithLogger(log), step.WithMetrics(m))
	if err != nil {
		return err
	}
	provision, err := step.NewProvision(employees, accounts, runlogs, schedule, step.WithLogger(log), step.WithMetrics(m))
	if err != nil {
		return err
	}
	notify, err := step.NewNotify(employees, notifications, runlogs, transport, step.NotifyConfig{
		TimeZone: cfg.DefaultTimeZone,
		From:     cfg.SMTP.From,
	}, step.WithLogger(log), step.WithMetrics(m))
	if err != nil {
		return err
	}

	orchestrator, err := pipeline.New(employees, validate, provision, notify, pipeline.WithLogger(log))
	if err != nil {
		return err
	}
	pipelineSvc, err := pipelineservice.New(employees, runlogs, orchestrator, locker,
		pipelineservice.WithLogger(log), pipelineservice.WithMetrics(m))
	if err != nil {
		return err
	}
	employeeOpts := []employeeservice.Option{
		employeeservice.WithLogger(log),
		employeeservice.WithMetrics(m),
	}
	if db != nil {
		employeeOpts = append(employeeOpts, employeeservice.WithTransactor(
			func(ctx context.Context, fn func(ctx context.Context) error) error {
				return tx.Run(ctx, db, fn)
			}))
	}
	employeeSvc, err := employeeservice.New(employees, runlogs, accounts, events, notifications, employeeOpts...)
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(60 * time.Second))

	employeehandler.New(employeeSvc, log).Register(router)
	pipelinehandler.New(pipelineSvc, log).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting onboard server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
