package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/retailops-labs/retailops-backend/internal/allocruns"
	"github.com/retailops-labs/retailops-backend/internal/audit"
	"github.com/retailops-labs/retailops-backend/internal/snapshots"
	"github.com/retailops-labs/retailops-backend/internal/suggestions"
	"github.com/retailops-labs/retailops-backend/internal/worker"
	"github.com/retailops-labs/retailops-backend/pkg/config"
	"github.com/retailops-labs/retailops-backend/pkg/db"
	"github.com/retailops-labs/retailops-backend/pkg/enums"
	"github.com/retailops-labs/retailops-backend/pkg/logger"
	"github.com/retailops-labs/retailops-backend/pkg/metrics"
	"github.com/retailops-labs/retailops-backend/pkg/migrate"
	"github.com/retailops-labs/retailops-backend/pkg/redis"
)

const lockKeyFormat = "ro:allocation-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "allocation-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "allocation-worker"

	logg = logger.New(logger.Options{
		ServiceName: "allocation-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	snapshotSvc, err := snapshots.NewService(snapshots.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create snapshot service", err)
		os.Exit(1)
	}

	auditSvc, err := audit.NewService(audit.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}

	runMetrics := metrics.NewRunMetrics(prometheus.DefaultRegisterer)
	runSvc, err := allocruns.NewService(
		allocruns.NewRepository(dbClient.DB()),
		suggestions.NewRepository(dbClient.DB()),
		snapshotSvc,
		auditSvc,
		dbClient,
		redisClient,
		cfg.Engine,
		runMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create allocation run service", err)
		os.Exit(1)
	}

	tenantSource, err := worker.NewStoreTenantSource(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create tenant source", err)
		os.Exit(1)
	}

	runType, err := enums.ParseRunType(cfg.Worker.RunType)
	if err != nil {
		runType = enums.RunTypeBoth
	}
	job, err := worker.NewAllocationJob(worker.AllocationJobParams{
		Logger:  logg,
		Tenants: tenantSource,
		Runs:    runSvc,
		RunType: runType,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create allocation job", err)
		os.Exit(1)
	}

	registry := worker.NewRegistry()
	registry.Register(job)

	lock, err := worker.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Worker.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create worker lock", err)
		os.Exit(1)
	}

	jobMetrics := metrics.NewJobMetrics(prometheus.DefaultRegisterer)
	service, err := worker.NewService(worker.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Worker.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create worker service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting allocation worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "allocation worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "allocation worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
