package stores

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/retailops-labs/retailops-backend/internal/planner"
	"github.com/retailops-labs/retailops-backend/internal/snapshots"
	"github.com/retailops-labs/retailops-backend/pkg/config"
	"github.com/retailops-labs/retailops-backend/pkg/db/models"
	"github.com/retailops-labs/retailops-backend/pkg/enums"
	pkgerrors "github.com/retailops-labs/retailops-backend/pkg/errors"
)

// StoreStatus is one store with its current utilization, computed from the
// latest position snapshot the same way a planning run would see it.
type StoreStatus struct {
	Store         models.Store
	OnHand        int
	Utilization   float64
	CapacityClass enums.CapacityClass
}

// Service reports store capacity posture for operators reviewing suggestions.
type Service interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]StoreStatus, error)
}

type service struct {
	repo   snapshots.Repository
	engine config.EngineConfig
}

// NewService wires a store status service over the snapshot repository.
func NewService(repo snapshots.Repository, engine config.EngineConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("snapshot repository required")
	}
	return &service{repo: repo, engine: engine}, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID) ([]StoreStatus, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}

	stores, err := s.repo.ListActiveStores(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	positions, err := s.repo.LatestPositions(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load positions")
	}

	onHand := make(map[uuid.UUID]int, len(stores))
	for _, pos := range positions {
		onHand[pos.StoreID] += pos.OnHand
	}

	thresholds := planner.ThresholdsFromConfig(s.engine)
	statuses := make([]StoreStatus, 0, len(stores))
	for _, store := range stores {
		load := planner.StoreLoad{Capacity: store.Capacity, OnHand: onHand[store.ID]}
		statuses = append(statuses, StoreStatus{
			Store:         store,
			OnHand:        load.OnHand,
			Utilization:   load.Utilization(),
			CapacityClass: load.Classify(thresholds),
		})
	}
	return statuses, nil
}
