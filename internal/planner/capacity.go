package planner

import (
	"math"

	"github.com/google/uuid"

	"github.com/retailops-labs/retailops-backend/pkg/enums"
)

// StoreLoad tracks a store's aggregate on-hand against its capacity during a
// run. Allocations landed earlier in the run count toward the load so later
// allocations see the updated headroom.
type StoreLoad struct {
	Capacity int
	OnHand   int
}

// Utilization returns on_hand / capacity. Stores with zero capacity report
// zero utilization and are treated as unconstrained.
func (l StoreLoad) Utilization() float64 {
	if l.Capacity <= 0 {
		return 0
	}
	return float64(l.OnHand) / float64(l.Capacity)
}

// Classify buckets the store by utilization. Zero-capacity stores are
// nominal: unconstrained as destinations, but carrying no has-space signal.
func (l StoreLoad) Classify(t Thresholds) enums.CapacityClass {
	if l.Capacity <= 0 {
		return enums.CapacityClassNominal
	}
	u := l.Utilization()
	switch {
	case u > t.OverloadedUtilization:
		return enums.CapacityClassOverloaded
	case u < t.HasSpaceUtilization:
		return enums.CapacityClassHasSpace
	default:
		return enums.CapacityClassNominal
	}
}

// Headroom returns how many more units may land before the store crosses the
// overloaded threshold. Zero capacity means no ceiling.
func (l StoreLoad) Headroom(t Thresholds) int {
	if l.Capacity <= 0 {
		return math.MaxInt32
	}
	limit := int(math.Floor(t.OverloadedUtilization * float64(l.Capacity)))
	if limit > l.Capacity {
		limit = l.Capacity
	}
	h := limit - l.OnHand
	if h < 0 {
		return 0
	}
	return h
}

// ComputeLoads sums on-hand per store across the whole snapshot. Utilization
// is recomputed per run from the run's own snapshot, never cached.
func ComputeLoads(snap *Snapshot) map[uuid.UUID]*StoreLoad {
	loads := make(map[uuid.UUID]*StoreLoad, len(snap.Stores))
	for _, store := range snap.Stores {
		loads[store.ID] = &StoreLoad{Capacity: store.Capacity}
	}
	for _, pos := range snap.Positions {
		if load, ok := loads[pos.StoreID]; ok {
			load.OnHand += pos.OnHand
		}
	}
	return loads
}
