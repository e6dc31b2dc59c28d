package planner

import (
	"sort"

	"github.com/google/uuid"

	"github.com/retailops-labs/retailops-backend/pkg/enums"
)

// velocityEpsilon keeps the urgency ratio finite for zero-velocity stores.
const velocityEpsilon = 0.01

type destCandidate struct {
	pos     Position
	tier    enums.StoreTier
	urgency float64
}

type warehouseSupply struct {
	storeID   uuid.UUID
	remaining int
}

// PlanPush allocates warehouse-held units to understocked stores. For each
// SKU the destinations are ranked by urgency (deficit over velocity,
// descending), ties broken by tier then store id, and supply is drained
// greedily under the capacity headroom of each destination.
func PlanPush(snap *Snapshot, t Thresholds) []Candidate {
	loads := ComputeLoads(snap)
	stores := make(map[uuid.UUID]StoreInfo, len(snap.Stores))
	for _, s := range snap.Stores {
		stores[s.ID] = s
	}

	supply := make(map[SKUKey][]warehouseSupply)
	dests := make(map[SKUKey][]destCandidate)
	for _, pos := range snap.Positions {
		store, ok := stores[pos.StoreID]
		if !ok {
			continue
		}
		key := SKUKey{ProductID: pos.ProductID, SizeCode: pos.SizeCode}
		if store.IsWarehouse {
			if avail := pos.Available(); avail > 0 {
				supply[key] = append(supply[key], warehouseSupply{storeID: store.ID, remaining: avail})
			}
			continue
		}
		if pos.WeeksOfCover >= t.PushThresholdWeeks {
			continue
		}
		deficit := pos.Deficit()
		if deficit == 0 {
			continue
		}
		if loads[store.ID].Classify(t) == enums.CapacityClassOverloaded {
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

	keys := make([]SKUKey, 0, len(supply))
	for key := range supply {
		if len(dests[key]) > 0 {
			keys = append(keys, key)
		}
	}
	sortSKUKeys(keys)

	var out []Candidate
	for _, key := range keys {
		sources := supply[key]
		sort.Slice(sources, func(i, j int) bool {
			return sources[i].storeID.String() < sources[j].storeID.String()
		})
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

		for _, dest := range ranked {
			load := loads[dest.pos.StoreID]
			need := dest.pos.Deficit()
			if headroom := load.Headroom(t); need > headroom {
				need = headroom
			}
			for i := range sources {
				if need == 0 {
					break
				}
				if sources[i].remaining == 0 {
					continue
				}
				qty := need
				if qty > sources[i].remaining {
					qty = sources[i].remaining
				}
				out = append(out, Candidate{
					ProductID:    key.ProductID,
					SizeCode:     key.SizeCode,
					TransferType: enums.TransferTypePush,
					FromStoreID:  sources[i].storeID,
					ToStoreID:    dest.pos.StoreID,
					Qty:          qty,
				})
				sources[i].remaining -= qty
				load.OnHand += qty
				need -= qty
			}
			if exhausted(sources) {
				break
			}
		}
	}
	return out
}

func exhausted(sources []warehouseSupply) bool {
	for _, s := range sources {
		if s.remaining > 0 {
			return false
		}
	}
	return true
}

func sortSKUKeys(keys []SKUKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ProductID != keys[j].ProductID {
			return keys[i].ProductID.String() < keys[j].ProductID.String()
		}
		return keys[i].SizeCode < keys[j].SizeCode
	})
}
