package planner

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/retailops-labs/retailops-backend/pkg/enums"
)

// Score assigns a priority and revenue estimate to every candidate. It is a
// pure function of the snapshot, the price book, and the thresholds: scoring
// the same candidate twice yields identical results.
func Score(candidates []Candidate, snap *Snapshot, prices PriceBook, t Thresholds) []ScoredCandidate {
	positions := make(map[SKUKey]map[string]Position)
	for _, pos := range snap.Positions {
		key := skuKey(pos)
		if positions[key] == nil {
			positions[key] = make(map[string]Position)
		}
		positions[key][pos.StoreID.String()] = pos
	}

	out := make([]ScoredCandidate, 0, len(candidates))
	for _, cand := range candidates {
		dest, ok := positions[SKUKey{ProductID: cand.ProductID, SizeCode: cand.SizeCode}][cand.ToStoreID.String()]
		if !ok {
			dest = Position{ProductID: cand.ProductID, StoreID: cand.ToStoreID, SizeCode: cand.SizeCode}
		}
		gain := revenueGain(cand.Qty, dest.Velocity, prices.Lookup(cand.ProductID, cand.SizeCode), t)
		out = append(out, ScoredCandidate{
			Candidate:            cand,
			Priority:             classify(dest, gain, t),
			PotentialRevenueGain: gain,
		})
	}
	return out
}

// revenueGain estimates how much of the transferred quantity could actually
// sell within the lead-time window at the destination's velocity.
func revenueGain(qty int, velocity float64, unitPrice decimal.Decimal, t Thresholds) decimal.Decimal {
	sellable := int(math.Ceil(velocity * float64(t.LeadTimeDays)))
	if qty < sellable {
		sellable = qty
	}
	if sellable <= 0 {
		return decimal.Zero
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(sellable))).Round(2)
}

// classify is P1 when the destination's projected stockout date lands inside
// the lead-time window and the revenue at stake clears the materiality floor.
func classify(dest Position, gain decimal.Decimal, t Thresholds) enums.Priority {
	stockoutDays := dest.WeeksOfCover * 7
	if stockoutDays <= float64(t.LeadTimeDays) && gain.GreaterThanOrEqual(t.MaterialityFloor) {
		return enums.PriorityP1
	}
	return enums.PriorityP2
}
