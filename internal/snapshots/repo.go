package snapshots

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops-labs/retailops-backend/pkg/db/models"
	pkgerrors "github.com/retailops-labs/retailops-backend/pkg/errors"
)

// latestPositionsFilter restricts each (product, store, size) key to its most
// recent snapshot date. New snapshots are new rows, never in-place updates,
// so MAX(snapshot_date) per key is authoritative.
const latestPositionsFilter = `(product_id, store_id, size_code, snapshot_date) IN (
	SELECT product_id, store_id, size_code, MAX(snapshot_date)
	FROM inventory_positions
	WHERE tenant_id = ?
	GROUP BY product_id, store_id, size_code)`

const latestDemandFilter = `(product_id, store_id, period_end) IN (
	SELECT product_id, store_id, MAX(period_end)
	FROM demand_signals
	WHERE tenant_id = ?
	GROUP BY product_id, store_id)`

// Repository reads the snapshot data the planners consume. Positions and
// demand are read-only from the engine's perspective; only derived size
// integrity records are written back.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActiveStores(ctx context.Context, tenantID uuid.UUID) ([]models.Store, error)
	LatestPositions(ctx context.Context, tenantID uuid.UUID) ([]models.InventoryPosition, error)
	LatestDemand(ctx context.Context, tenantID uuid.UUID) ([]models.DemandSignal, error)
	LatestPosition(ctx context.Context, tenantID, productID, storeID uuid.UUID, sizeCode string) (*models.InventoryPosition, error)
	LatestDemandSignal(ctx context.Context, tenantID, productID, storeID uuid.UUID) (*models.DemandSignal, error)
	CanonicalSizes(ctx context.Context, tenantID uuid.UUID) ([]models.ProductSKU, error)
	ListPrices(ctx context.Context, tenantID uuid.UUID) ([]models.SKUPrice, error)
	SaveSizeIntegrity(ctx context.Context, records []models.SizeIntegrityRecord) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a snapshot repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListActiveStores(ctx context.Context, tenantID uuid.UUID) ([]models.Store, error) {
	var stores []models.Store
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("id ASC").
		Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *repository) LatestPositions(ctx context.Context, tenantID uuid.UUID) ([]models.InventoryPosition, error) {
	var positions []models.InventoryPosition
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where(latestPositionsFilter, tenantID).
		Order("product_id ASC, store_id ASC, size_code ASC").
		Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

func (r *repository) LatestDemand(ctx context.Context, tenantID uuid.UUID) ([]models.DemandSignal, error) {
	var signals []models.DemandSignal
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where(latestDemandFilter, tenantID).
		Order("product_id ASC, store_id ASC").
		Find(&signals).Error; err != nil {
		return nil, err
	}
	return signals, nil
}

func (r *repository) LatestPosition(ctx context.Context, tenantID, productID, storeID uuid.UUID, sizeCode string) (*models.InventoryPosition, error) {
	var position models.InventoryPosition
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND store_id = ? AND size_code = ?", tenantID, productID, storeID, sizeCode).
		Order("snapshot_date DESC").
		First(&position).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory position not found")
	}
	if err != nil {
		return nil, err
	}
	return &position, nil
}

func (r *repository) LatestDemandSignal(ctx context.Context, tenantID, productID, storeID uuid.UUID) (*models.DemandSignal, error) {
	var signal models.DemandSignal
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND store_id = ?", tenantID, productID, storeID).
		Order("period_end DESC").
		First(&signal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "demand signal not found")
	}
	if err != nil {
		return nil, err
	}
	return &signal, nil
}

func (r *repository) CanonicalSizes(ctx context.Context, tenantID uuid.UUID) ([]models.ProductSKU, error) {
	var skus []models.ProductSKU
	if err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = product_skus.product_id").
		Where("products.tenant_id = ?", tenantID).
		Order("product_skus.product_id ASC, product_skus.size_code ASC").
		Find(&skus).Error; err != nil {
		return nil, err
	}
	return skus, nil
}

func (r *repository) ListPrices(ctx context.Context, tenantID uuid.UUID) ([]models.SKUPrice, error) {
	var prices []models.SKUPrice
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Find(&prices).Error; err != nil {
		return nil, err
	}
	return prices, nil
}

func (r *repository) SaveSizeIntegrity(ctx context.Context, records []models.SizeIntegrityRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&records).Error
}
