package snapshots

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/retailops-labs/retailops-backend/internal/planner"
	"github.com/retailops-labs/retailops-backend/pkg/db/models"
	"github.com/retailops-labs/retailops-backend/pkg/enums"
	"github.com/retailops-labs/retailops-backend/pkg/logger"
)

type fakeRepository struct {
	stores    []models.Store
	positions []models.InventoryPosition
	signals   []models.DemandSignal
	skus      []models.ProductSKU
	prices    []models.SKUPrice
	saved     []models.SizeIntegrityRecord
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) ListActiveStores(ctx context.Context, tenantID uuid.UUID) ([]models.Store, error) {
	return f.stores, nil
}

func (f *fakeRepository) LatestPositions(ctx context.Context, tenantID uuid.UUID) ([]models.InventoryPosition, error) {
	return f.positions, nil
}

func (f *fakeRepository) LatestDemand(ctx context.Context, tenantID uuid.UUID) ([]models.DemandSignal, error) {
	return f.signals, nil
}

func (f *fakeRepository) LatestPosition(ctx context.Context, tenantID, productID, storeID uuid.UUID, sizeCode string) (*models.InventoryPosition, error) {
	return nil, nil
}

func (f *fakeRepository) LatestDemandSignal(ctx context.Context, tenantID, productID, storeID uuid.UUID) (*models.DemandSignal, error) {
	return nil, nil
}

func (f *fakeRepository) CanonicalSizes(ctx context.Context, tenantID uuid.UUID) ([]models.ProductSKU, error) {
	return f.skus, nil
}

func (f *fakeRepository) ListPrices(ctx context.Context, tenantID uuid.UUID) ([]models.SKUPrice, error) {
	return f.prices, nil
}

func (f *fakeRepository) SaveSizeIntegrity(ctx context.Context, records []models.SizeIntegrityRecord) error {
	f.saved = append(f.saved, records...)
	return nil
}

func TestService_LoadRunSnapshot(t *testing.T) {
	tenantID := uuid.New()
	storeID := uuid.New()
	unknownStore := uuid.New()
	productID := uuid.New()

	sizeM := "M"
	repo := &fakeRepository{
		stores: []models.Store{{
			ID:       storeID,
			TenantID: tenantID,
			Name:     "A",
			Tier:     enums.StoreTierA,
			Capacity: 500,
			Active:   true,
		}},
		positions: []models.InventoryPosition{
			{TenantID: tenantID, ProductID: productID, StoreID: storeID, SizeCode: "M", OnHand: 3, SafetyStock: 10, WeeksOfCover: 1},
			{TenantID: tenantID, ProductID: productID, StoreID: unknownStore, SizeCode: "M", OnHand: 9},
		},
		signals: []models.DemandSignal{
			{TenantID: tenantID, ProductID: productID, StoreID: storeID, SalesVelocity: 2.5, Trend: enums.DemandTrendAccelerating},
		},
		skus: []models.ProductSKU{
			{ProductID: productID, SizeCode: "M"},
			{ProductID: productID, SizeCode: "L"},
		},
		prices: []models.SKUPrice{
			{TenantID: tenantID, ProductID: productID, SizeCode: &sizeM, AvgUnitPrice: decimal.NewFromInt(45)},
			{TenantID: tenantID, ProductID: productID, AvgUnitPrice: decimal.NewFromInt(40)},
		},
	}

	svc, err := NewService(repo, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	snap, err := svc.LoadRunSnapshot(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("LoadRunSnapshot error: %v", err)
	}

	if snap.Skipped != 1 {
		t.Fatalf("expected 1 skipped row, got %d", snap.Skipped)
	}
	if len(snap.Snapshot.Positions) != 1 {
		t.Fatalf("expected 1 usable position, got %d", len(snap.Snapshot.Positions))
	}
	pos := snap.Snapshot.Positions[0]
	if pos.Velocity != 2.5 || pos.Trend != enums.DemandTrendAccelerating {
		t.Fatalf("demand signal not joined: %+v", pos)
	}

	// Product has sizes M and L but only M is stocked.
	missing := snap.Snapshot.MissingSizes[planner.StoreProductKey{StoreID: storeID, ProductID: productID}]
	if !missing["L"] {
		t.Fatalf("expected L flagged missing, got %v", missing)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected one integrity record persisted, got %d", len(repo.saved))
	}

	if got := snap.Prices.Lookup(productID, "M"); !got.Equal(decimal.NewFromInt(45)) {
		t.Fatalf("expected SKU price 45, got %s", got)
	}
	if got := snap.Prices.Lookup(productID, "XL"); !got.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected product fallback 40, got %s", got)
	}
}

func TestService_LoadRunSnapshotRequiresTenant(t *testing.T) {
	svc, err := NewService(&fakeRepository{}, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	if _, err := svc.LoadRunSnapshot(context.Background(), uuid.Nil); err == nil {
		t.Fatal("expected validation error")
	}
}
