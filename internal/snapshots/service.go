package snapshots

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/retailops-labs/retailops-backend/internal/planner"
	"github.com/retailops-labs/retailops-backend/pkg/db/models"
	"github.com/retailops-labs/retailops-backend/pkg/logger"
)

// RunSnapshot is the fully assembled input for one allocation run: the
// planner view of the world, the price book for scoring, and the count of
// rows skipped because they referenced unknown stores or products.
type RunSnapshot struct {
	Snapshot *planner.Snapshot
	Prices   planner.PriceBook
	Skipped  int
}

// Service assembles run snapshots and answers point lookups against the
// latest position and demand data.
type Service interface {
	LoadRunSnapshot(ctx context.Context, tenantID uuid.UUID) (*RunSnapshot, error)
	LatestPosition(ctx context.Context, tenantID, productID, storeID uuid.UUID, sizeCode string) (*models.InventoryPosition, error)
	LatestDemand(ctx context.Context, tenantID, productID, storeID uuid.UUID) (*models.DemandSignal, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires a snapshot service with the provided repository.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("snapshot repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) LoadRunSnapshot(ctx context.Context, tenantID uuid.UUID) (*RunSnapshot, error) {
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant id is required")
	}

	stores, err := s.repo.ListActiveStores(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing stores: %w", err)
	}
	positions, err := s.repo.LatestPositions(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("loading positions: %w", err)
	}
	signals, err := s.repo.LatestDemand(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("loading demand: %w", err)
	}
	skus, err := s.repo.CanonicalSizes(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("loading canonical sizes: %w", err)
	}
	prices, err := s.repo.ListPrices(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("loading prices: %w", err)
	}

	storeInfos := make([]planner.StoreInfo, 0, len(stores))
	knownStores := make(map[uuid.UUID]bool, len(stores))
	for _, store := range stores {
		storeInfos = append(storeInfos, planner.StoreInfo{
			ID:          store.ID,
			Name:        store.Name,
			Tier:        store.Tier,
			Capacity:    store.Capacity,
			IsWarehouse: store.IsWarehouse,
		})
		knownStores[store.ID] = true
	}

	type demandKey struct {
		productID uuid.UUID
		storeID   uuid.UUID
	}
	demand := make(map[demandKey]models.DemandSignal, len(signals))
	for _, sig := range signals {
		demand[demandKey{productID: sig.ProductID, storeID: sig.StoreID}] = sig
	}

	skipped := 0
	plannerPositions := make([]planner.Position, 0, len(positions))
	for _, pos := range positions {
		if !knownStores[pos.StoreID] {
			// Inactive or unknown store; a single bad row must not abort
			// the run.
			skipped++
			continue
		}
		p := planner.Position{
			ProductID:    pos.ProductID,
			StoreID:      pos.StoreID,
			SizeCode:     pos.SizeCode,
			OnHand:       pos.OnHand,
			Reserved:     pos.Reserved,
			SafetyStock:  pos.SafetyStock,
			WeeksOfCover: pos.WeeksOfCover,
		}
		if sig, ok := demand[demandKey{productID: pos.ProductID, storeID: pos.StoreID}]; ok {
			p.Velocity = sig.SalesVelocity
			p.Trend = sig.Trend
		}
		plannerPositions = append(plannerPositions, p)
	}
	if skipped > 0 {
		s.logg.Warn(ctx, fmt.Sprintf("skipped %d position rows referencing unknown stores", skipped))
	}

	canonical := make(map[uuid.UUID][]string)
	for _, sku := range skus {
		canonical[sku.ProductID] = append(canonical[sku.ProductID], sku.SizeCode)
	}

	integrity := planner.CheckSizeIntegrity(canonical, plannerPositions)
	if err := s.persistIntegrity(ctx, tenantID, integrity); err != nil {
		return nil, fmt.Errorf("saving size integrity: %w", err)
	}

	return &RunSnapshot{
		Snapshot: &planner.Snapshot{
			Stores:       storeInfos,
			Positions:    plannerPositions,
			MissingSizes: planner.MissingSizeIndex(integrity),
		},
		Prices:  buildPriceBook(prices),
		Skipped: skipped,
	}, nil
}

func (s *service) persistIntegrity(ctx context.Context, tenantID uuid.UUID, integrity []planner.SizeIntegrity) error {
	if len(integrity) == 0 {
		return nil
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	records := make([]models.SizeIntegrityRecord, 0, len(integrity))
	for _, rec := range integrity {
		records = append(records, models.SizeIntegrityRecord{
			TenantID:            tenantID,
			ProductID:           rec.ProductID,
			StoreID:             rec.StoreID,
			SnapshotDate:        today,
			TotalSizesExpected:  rec.SizesExpected,
			TotalSizesAvailable: rec.SizesAvailable,
			IsFullSizeRun:       rec.IsFullSizeRun,
			MissingSizes:        pq.StringArray(rec.MissingSizes),
		})
	}
	return s.repo.SaveSizeIntegrity(ctx, records)
}

func (s *service) LatestPosition(ctx context.Context, tenantID, productID, storeID uuid.UUID, sizeCode string) (*models.InventoryPosition, error) {
	if tenantID == uuid.Nil || productID == uuid.Nil || storeID == uuid.Nil {
		return nil, fmt.Errorf("tenant, product and store ids are required")
	}
	return s.repo.LatestPosition(ctx, tenantID, productID, storeID, sizeCode)
}

func (s *service) LatestDemand(ctx context.Context, tenantID, productID, storeID uuid.UUID) (*models.DemandSignal, error) {
	if tenantID == uuid.Nil || productID == uuid.Nil || storeID == uuid.Nil {
		return nil, fmt.Errorf("tenant, product and store ids are required")
	}
	return s.repo.LatestDemandSignal(ctx, tenantID, productID, storeID)
}

func buildPriceBook(prices []models.SKUPrice) planner.PriceBook {
	book := planner.PriceBook{
		BySKU:     make(map[planner.SKUKey]decimal.Decimal, len(prices)),
		ByProduct: make(map[uuid.UUID]decimal.Decimal),
	}
	for _, price := range prices {
		if price.SizeCode == nil || *price.SizeCode == "" {
			book.ByProduct[price.ProductID] = price.AvgUnitPrice
			continue
		}
		book.BySKU[planner.SKUKey{ProductID: price.ProductID, SizeCode: *price.SizeCode}] = price.AvgUnitPrice
	}
	return book
}
