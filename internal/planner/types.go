package planner

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops-labs/retailops-backend/pkg/config"
	"github.com/retailops-labs/retailops-backend/pkg/enums"
)

// StoreInfo is the slice of store master data the planners need.
type StoreInfo struct {
	ID          uuid.UUID
	Name        string
	Tier        enums.StoreTier
	Capacity    int
	IsWarehouse bool
}

// Position merges the latest inventory snapshot with its demand signal for
// one (product, store, size). Velocity is zero when no demand signal exists;
// that is a valid state for a new product, not an error.
type Position struct {
	ProductID    uuid.UUID
	StoreID      uuid.UUID
	SizeCode     string
	OnHand       int
	Reserved     int
	SafetyStock  int
	WeeksOfCover float64
	Velocity     float64
	Trend        enums.DemandTrend
}

// Available is on_hand minus reserved, floored at zero.
func (p Position) Available() int {
	avail := p.OnHand - p.Reserved
	if avail < 0 {
		return 0
	}
	return avail
}

// Deficit is how many units the position is short of its safety stock.
func (p Position) Deficit() int {
	d := p.SafetyStock - p.OnHand
	if d < 0 {
		return 0
	}
	return d
}

// SKUKey identifies one (product, size) pair.
type SKUKey struct {
	ProductID uuid.UUID
	SizeCode  string
}

// StoreProductKey identifies one (store, product) pair for size integrity.
type StoreProductKey struct {
	StoreID   uuid.UUID
	ProductID uuid.UUID
}

// Snapshot is the planners' entire view of the world, fetched once at run
// start. Planner computation never re-reads position data mid-run.
type Snapshot struct {
	Stores    []StoreInfo
	Positions []Position
	// MissingSizes maps (store, product) to the size codes absent from the
	// store's assortment despite belonging to the product's canonical set.
	MissingSizes map[StoreProductKey]map[string]bool
}

// Candidate is one proposed transfer emitted by a planner, before scoring.
type Candidate struct {
	ProductID    uuid.UUID
	SizeCode     string
	TransferType enums.TransferType
	FromStoreID  uuid.UUID
	ToStoreID    uuid.UUID
	Qty          int
}

// ScoredCandidate is a candidate with its priority and revenue estimate.
type ScoredCandidate struct {
	Candidate
	Priority             enums.Priority
	PotentialRevenueGain decimal.Decimal
}

// PriceBook resolves the historical realized average unit price for a SKU,
// falling back to the product-level average, then zero. A missing price never
// blocks a suggestion.
type PriceBook struct {
	BySKU     map[SKUKey]decimal.Decimal
	ByProduct map[uuid.UUID]decimal.Decimal
}

// Lookup returns the best available price for the SKU.
func (b PriceBook) Lookup(productID uuid.UUID, sizeCode string) decimal.Decimal {
	if price, ok := b.BySKU[SKUKey{ProductID: productID, SizeCode: sizeCode}]; ok {
		return price
	}
	if price, ok := b.ByProduct[productID]; ok {
		return price
	}
	return decimal.Zero
}

// Thresholds carries the tunable engine parameters for one run.
type Thresholds struct {
	PushThresholdWeeks    float64
	SurplusThresholdWeeks float64
	OverloadedUtilization float64
	HasSpaceUtilization   float64
	LeadTimeDays          int
	MaterialityFloor      decimal.Decimal
}

// ThresholdsFromConfig maps the engine config onto planner thresholds.
func ThresholdsFromConfig(cfg config.EngineConfig) Thresholds {
	return Thresholds{
		PushThresholdWeeks:    cfg.PushThresholdWeeks,
		SurplusThresholdWeeks: cfg.SurplusThresholdWeeks,
		OverloadedUtilization: cfg.OverloadedUtilization,
		HasSpaceUtilization:   cfg.HasSpaceUtilization,
		LeadTimeDays:          cfg.LeadTimeDays,
		MaterialityFloor:      decimal.NewFromFloat(cfg.MaterialityFloor),
	}
}
