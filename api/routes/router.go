package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/retailops-labs/retailops-backend/api/controllers"
	"github.com/retailops-labs/retailops-backend/api/middleware"
	"github.com/retailops-labs/retailops-backend/internal/allocruns"
	"github.com/retailops-labs/retailops-backend/internal/audit"
	"github.com/retailops-labs/retailops-backend/internal/stores"
	"github.com/retailops-labs/retailops-backend/internal/suggestions"
	"github.com/retailops-labs/retailops-backend/pkg/config"
	"github.com/retailops-labs/retailops-backend/pkg/db"
	"github.com/retailops-labs/retailops-backend/pkg/logger"
	"github.com/retailops-labs/retailops-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	runService allocruns.Service,
	suggestionService suggestions.Service,
	auditService audit.Service,
	storeService stores.Service,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.CORS(cfg.App.CORSOrigins))

	// Keep typed nils from sneaking into the interface values.
	var cachePinger redis.Pinger
	var idempotencyStore redis.IdempotencyStore
	if redisClient != nil {
		cachePinger = redisClient
		idempotencyStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cachePinger))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/allocation/runs", func(r chi.Router) {
			r.Post("/", controllers.TriggerRun(runService, logg))
			r.Get("/", controllers.ListRuns(runService, logg))
			r.Get("/{runId}", controllers.GetRun(runService, logg))
		})

		r.Route("/suggestions", func(r chi.Router) {
			r.Get("/", controllers.ListSuggestions(suggestionService, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireDecisionRole(logg))
				r.Post("/{suggestionId}/decision", controllers.DecideSuggestion(suggestionService, logg))
				r.Post("/{suggestionId}/executed", controllers.MarkSuggestionExecuted(suggestionService, logg))
			})
		})

		r.Get("/audit/{entityType}/{entityId}", controllers.AuditTrail(auditService, logg))
		r.Get("/stores", controllers.StoreStatuses(storeService, logg))
	})

	return r
}
