package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/retailops-labs/retailops-backend/api/routes"
	"github.com/retailops-labs/retailops-backend/internal/allocruns"
	"github.com/retailops-labs/retailops-backend/internal/audit"
	"github.com/retailops-labs/retailops-backend/internal/snapshots"
	"github.com/retailops-labs/retailops-backend/internal/stores"
	"github.com/retailops-labs/retailops-backend/internal/suggestions"
	"github.com/retailops-labs/retailops-backend/pkg/config"
	"github.com/retailops-labs/retailops-backend/pkg/db"
	"github.com/retailops-labs/retailops-backend/pkg/logger"
	"github.com/retailops-labs/retailops-backend/pkg/metrics"
	"github.com/retailops-labs/retailops-backend/pkg/migrate"
	"github.com/retailops-labs/retailops-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	suggestionRepo := suggestions.NewRepository(dbClient.DB())
	suggestionSvc, err := suggestions.NewService(suggestionRepo, dbClient, auditSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create suggestion service", err)
		os.Exit(1)
	}

	runMetrics := metrics.NewRunMetrics(prometheus.DefaultRegisterer)
	runSvc, err := allocruns.NewService(
		allocruns.NewRepository(dbClient.DB()),
		suggestionRepo,
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

	storeSvc, err := stores.NewService(snapshots.NewRepository(dbClient.DB()), cfg.Engine)
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, runSvc, suggestionSvc, auditSvc, storeSvc),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
