package planner

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/retailops-labs/retailops-backend/pkg/enums"
)

type sourceCandidate struct {
	pos     Position
	surplus int
}

// PlanLateral matches overstocked stores against understocked ones for the
// same SKU. Sources keep their own safety stock; destinations are filled in
// urgency order from the largest surplus first. A store is never both source
// and destination for the same SKU, and self-transfers are never emitted.
func PlanLateral(snap *Snapshot, t Thresholds) []Candidate {
	loads := ComputeLoads(snap)
	stores := make(map[uuid.UUID]StoreInfo, len(snap.Stores))
	for _, s := range snap.Stores {
		stores[s.ID] = s
	}

	sources := make(map[SKUKey][]sourceCandidate)
	dests := make(map[SKUKey][]destCandidate)
	for _, pos := range snap.Positions {
		store, ok := stores[pos.StoreID]
		if !ok || store.IsWarehouse {
			continue
		}
		if loads[store.ID].Classify(t) == enums.CapacityClassOverloaded {
			// Overloaded stores still drain as sources; they are only
			// excluded as destinations.
			if surplus := lateralSurplus(pos, t); surplus > 0 && pos.Trend.IsLow() && pos.WeeksOfCover > t.SurplusThresholdWeeks {
				sources[skuKey(pos)] = append(sources[skuKey(pos)], sourceCandidate{pos: pos, surplus: surplus})
			}
			continue
		}

		key := skuKey(pos)
		if pos.WeeksOfCover > t.SurplusThresholdWeeks && pos.Trend.IsLow() {
			if surplus := lateralSurplus(pos, t); surplus > 0 {
				sources[key] = append(sources[key], sourceCandidate{pos: pos, surplus: surplus})
				continue
			}
		}

		missing := snap.MissingSizes[StoreProductKey{StoreID: pos.StoreID, ProductID: pos.ProductID}]
		if pos.WeeksOfCover >= t.PushThresholdWeeks && !missing[pos.SizeCode] {
			continue
		}
		deficit := pos.Deficit()
		if deficit == 0 {
			continue
		}
		velocity := pos.Velocity
		if velocity < velocityEpsilon {
			velocity = velocityEpsilon
		}
		dests[key] = append(dests[key], destCandidate{
			pos:     pos,
			tier:    store.Tier,
			urgency: float64(deficit) / velocity,
		})
	}

	addMissingSizeDests(snap, t, loads, stores, dests)

	keys := make([]SKUKey, 0, len(dests))
	for key := range dests {
		if len(sources[key]) > 0 {
			keys = append(keys, key)
		}
	}
	sortSKUKeys(keys)

	var out []Candidate
	for _, key := range keys {
		ranked := dests[key]
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].urgency != ranked[j].urgency {
				return ranked[i].urgency > ranked[j].urgency
			}
			if ranked[i].tier.Rank() != ranked[j].tier.Rank() {
				return ranked[i].tier.Rank() < ranked[j].tier.Rank()
			}
			return ranked[i].pos.StoreID.String() < ranked[j].pos.StoreID.String()
		})
		pool := sources[key]
		sort.Slice(pool, func(i, j int) bool {
			if pool[i].surplus != pool[j].surplus {
				return pool[i].surplus > pool[j].surplus
			}
			return pool[i].pos.StoreID.String() < pool[j].pos.StoreID.String()
		})

		for _, dest := range ranked {
			load := loads[dest.pos.StoreID]
			need := dest.pos.Deficit()
			if headroom := load.Headroom(t); need > headroom {
				need = headroom
			}
			for i := range pool {
				if need == 0 {
					break
				}
				src := &pool[i]
				if src.surplus == 0 || src.pos.StoreID == dest.pos.StoreID {
					continue
				}
				qty := minInt(src.surplus, need, src.pos.OnHand-src.pos.SafetyStock)
				if qty <= 0 {
					continue
				}
				out = append(out, Candidate{
					ProductID:    key.ProductID,
					SizeCode:     key.SizeCode,
					TransferType: enums.TransferTypeLateral,
					FromStoreID:  src.pos.StoreID,
					ToStoreID:    dest.pos.StoreID,
					Qty:          qty,
				})
				src.surplus -= qty
				load.OnHand += qty
				need -= qty
			}
		}
	}
	return out
}

// addMissingSizeDests seeds destinations for sizes a store is missing outright,
// where no position row exists to rank. Safety stock and velocity are borrowed
// from the sibling sizes the store already carries, so the assortment gap
// competes for stock on the same urgency scale as real deficits.
func addMissingSizeDests(snap *Snapshot, t Thresholds, loads map[uuid.UUID]*StoreLoad, stores map[uuid.UUID]StoreInfo, dests map[SKUKey][]destCandidate) {
	type siblingStats struct {
		safety   int
		velocity float64
		count    int
	}
	present := make(map[StoreProductKey]map[string]bool)
	stats := make(map[StoreProductKey]siblingStats)
	for _, pos := range snap.Positions {
		key := StoreProductKey{StoreID: pos.StoreID, ProductID: pos.ProductID}
		if present[key] == nil {
			present[key] = make(map[string]bool)
		}
		present[key][pos.SizeCode] = true
		st := stats[key]
		if pos.SafetyStock > st.safety {
			st.safety = pos.SafetyStock
		}
		st.velocity += pos.Velocity
		st.count++
		stats[key] = st
	}

	for key, missing := range snap.MissingSizes {
		store, ok := stores[key.StoreID]
		if !ok || store.IsWarehouse {
			continue
		}
		if loads[key.StoreID].Classify(t) == enums.CapacityClassOverloaded {
			continue
		}
		st := stats[key]
		safety := st.safety
		if safety == 0 {
			// Never carried the product at all; seed a single unit.
			safety = 1
		}
		velocity := velocityEpsilon
		if st.count > 0 && st.velocity/float64(st.count) > velocityEpsilon {
			velocity = st.velocity / float64(st.count)
		}
		for size := range missing {
			if present[key][size] {
				continue
			}
			pos := Position{
				ProductID:   key.ProductID,
				StoreID:     key.StoreID,
				SizeCode:    size,
				SafetyStock: safety,
			}
			dests[skuKey(pos)] = append(dests[skuKey(pos)], destCandidate{
				pos:     pos,
				tier:    store.Tier,
				urgency: float64(pos.Deficit()) / velocity,
			})
		}
	}
}

// lateralSurplus is what the store can give up while keeping enough cover to
// stay above the push threshold itself.
func lateralSurplus(pos Position, t Thresholds) int {
	keep := int(math.Ceil(pos.Velocity * 7 * t.PushThresholdWeeks))
	if keep < pos.SafetyStock {
		keep = pos.SafetyStock
	}
	surplus := pos.OnHand - keep
	if surplus < 0 {
		return 0
	}
	return surplus
}

func skuKey(pos Position) SKUKey {
	return SKUKey{ProductID: pos.ProductID, SizeCode: pos.SizeCode}
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
