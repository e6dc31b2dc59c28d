package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/retailops-labs/retailops-backend/api/responses"
	"github.com/retailops-labs/retailops-backend/internal/stores"
	"github.com/retailops-labs/retailops-backend/pkg/enums"
	pkgerrors "github.com/retailops-labs/retailops-backend/pkg/errors"
	"github.com/retailops-labs/retailops-backend/pkg/logger"
)

type storeStatusItem struct {
	StoreID       uuid.UUID           `json:"store_id"`
	Name          string              `json:"name"`
	Tier          enums.StoreTier     `json:"tier"`
	Capacity      int                 `json:"capacity"`
	OnHand        int                 `json:"on_hand"`
	Utilization   float64             `json:"utilization"`
	CapacityClass enums.CapacityClass `json:"capacity_class"`
}

type storeStatusResponse struct {
	Items []storeStatusItem `json:"items"`
}

// StoreStatuses reports on-hand load and capacity posture per active store.
func StoreStatuses(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		tenantID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var classFilter *enums.CapacityClass
		if raw := r.URL.Query().Get("class"); raw != "" {
			parsed, err := enums.ParseCapacityClass(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid class filter"))
				return
			}
			classFilter = &parsed
		}

		statuses, err := svc.List(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]storeStatusItem, 0, len(statuses))
		for _, status := range statuses {
			if classFilter != nil && status.CapacityClass != *classFilter {
				continue
			}
			items = append(items, storeStatusItem{
				StoreID:       status.Store.ID,
				Name:          status.Store.Name,
				Tier:          status.Store.Tier,
				Capacity:      status.Store.Capacity,
				OnHand:        status.OnHand,
				Utilization:   status.Utilization,
				CapacityClass: status.CapacityClass,
			})
		}
		responses.WriteSuccess(w, storeStatusResponse{Items: items})
	}
}
