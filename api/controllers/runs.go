package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/retailops-labs/retailops-backend/api/middleware"
	"github.com/retailops-labs/retailops-backend/api/responses"
	"github.com/retailops-labs/retailops-backend/api/validators"
	"github.com/retailops-labs/retailops-backend/internal/allocruns"
	"github.com/retailops-labs/retailops-backend/pkg/db/models"
	"github.com/retailops-labs/retailops-backend/pkg/enums"
	pkgerrors "github.com/retailops-labs/retailops-backend/pkg/errors"
	"github.com/retailops-labs/retailops-backend/pkg/logger"
	"github.com/retailops-labs/retailops-backend/pkg/pagination"
)

type triggerRunRequest struct {
	RunType string `json:"run_type" validate:"required,oneof=push lateral both"`
}

type runListResponse struct {
	Items  []models.AllocationRun `json:"items"`
	Cursor string                 `json:"cursor"`
}

// TriggerRun starts a synchronous allocation run for the caller's tenant.
func TriggerRun(svc allocruns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "allocation run service unavailable"))
			return
		}

		tenantID, operatorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req triggerRunRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		runType, err := enums.ParseRunType(req.RunType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid run type"))
			return
		}

		run, err := svc.TriggerRun(r.Context(), allocruns.TriggerRunInput{
			TenantID:    tenantID,
			RunType:     runType,
			TriggeredBy: &operatorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, run)
	}
}

// ListRuns returns the tenant's run history, newest first.
func ListRuns(svc allocruns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "allocation run service unavailable"))
			return
		}

		tenantID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), tenantID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, runListResponse{Items: page.Runs, Cursor: page.NextCursor})
	}
}

// GetRun fetches one run scoped to the caller's tenant.
func GetRun(svc allocruns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "allocation run service unavailable"))
			return
		}

		tenantID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		runID, err := validators.ParsePathUUID(chi.URLParam(r, "runId"), "run id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), tenantID, runID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

func actorFromContext(r *http.Request) (tenantID, operatorID uuid.UUID, err error) {
	tenantID, err = uuid.Parse(middleware.TenantIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "tenant context missing")
	}
	operatorID, err = uuid.Parse(middleware.OperatorIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "operator context missing")
	}
	return tenantID, operatorID, nil
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Limit: limit, Cursor: r.URL.Query().Get("cursor")}, nil
}
