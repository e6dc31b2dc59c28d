package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/retailops-labs/retailops-backend/api/responses"
	"github.com/retailops-labs/retailops-backend/api/validators"
	"github.com/retailops-labs/retailops-backend/internal/audit"
	"github.com/retailops-labs/retailops-backend/pkg/db/models"
	pkgerrors "github.com/retailops-labs/retailops-backend/pkg/errors"
	"github.com/retailops-labs/retailops-backend/pkg/logger"
)

type auditTrailResponse struct {
	Items []models.AuditLogEntry `json:"items"`
}

// AuditTrail returns the full decision history for one entity, oldest first.
func AuditTrail(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		entityType := chi.URLParam(r, "entityType")
		switch entityType {
		case audit.EntityTypeSuggestion, audit.EntityTypeRun:
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown entity type").WithDetails(map[string]any{"field": "entityType"}))
			return
		}

		entityID, err := validators.ParsePathUUID(chi.URLParam(r, "entityId"), "entity id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tenantID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.Trail(r.Context(), entityType, entityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Trail rows carry their tenant; hide other tenants' entities.
		scoped := make([]models.AuditLogEntry, 0, len(entries))
		for _, entry := range entries {
			if entry.TenantID == tenantID {
				scoped = append(scoped, entry)
			}
		}
		responses.WriteSuccess(w, auditTrailResponse{Items: scoped})
	}
}
