package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/retailops-labs/retailops-backend/api/responses"
	"github.com/retailops-labs/retailops-backend/api/validators"
	"github.com/retailops-labs/retailops-backend/internal/suggestions"
	"github.com/retailops-labs/retailops-backend/pkg/db/models"
	"github.com/retailops-labs/retailops-backend/pkg/enums"
	pkgerrors "github.com/retailops-labs/retailops-backend/pkg/errors"
	"github.com/retailops-labs/retailops-backend/pkg/logger"
)

type decisionRequest struct {
	Action      string  `json:"action" validate:"required,oneof=approve reject"`
	Notes       *string `json:"notes" validate:"omitempty,max=2000"`
	QtyOverride *int    `json:"qty_override" validate:"omitempty,min=1"`
}

type suggestionListResponse struct {
	Items  []models.RebalanceSuggestion `json:"items"`
	Cursor string                       `json:"cursor"`
}

// ListSuggestions returns the tenant's suggestions with optional status,
// priority and run filters.
func ListSuggestions(svc suggestions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "suggestion service unavailable"))
			return
		}

		tenantID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := suggestions.ListFilter{}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseSuggestionStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filter.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("priority")); raw != "" {
			priority, err := enums.ParsePriority(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority filter"))
				return
			}
			filter.Priority = &priority
		}
		runID, err := validators.ParseQueryUUID(r, "run_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.RunID = runID

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), tenantID, filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, suggestionListResponse{Items: page.Suggestions, Cursor: page.NextCursor})
	}
}

// DecideSuggestion records an approve or reject verdict on a pending
// suggestion.
func DecideSuggestion(svc suggestions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "suggestion service unavailable"))
			return
		}

		tenantID, operatorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		suggestionID, err := validators.ParsePathUUID(chi.URLParam(r, "suggestionId"), "suggestion id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req decisionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Decide(r.Context(), suggestions.DecideInput{
			TenantID:     tenantID,
			SuggestionID: suggestionID,
			Action:       suggestions.DecisionAction(req.Action),
			ActorID:      operatorID,
			Notes:        req.Notes,
			QtyOverride:  req.QtyOverride,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// MarkSuggestionExecuted closes out an approved suggestion once the physical
// transfer happened.
func MarkSuggestionExecuted(svc suggestions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "suggestion service unavailable"))
			return
		}

		tenantID, operatorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		suggestionID, err := validators.ParsePathUUID(chi.URLParam(r, "suggestionId"), "suggestion id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.MarkExecuted(r.Context(), tenantID, suggestionID, operatorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}
