package planner

import (
	"sort"

	"github.com/google/uuid"
)

// SizeIntegrity describes how complete a store's size assortment is for one
// product.
type SizeIntegrity struct {
	StoreID        uuid.UUID
	ProductID      uuid.UUID
	SizesExpected  int
	SizesAvailable int
	IsFullSizeRun  bool
	MissingSizes   []string
}

// CheckSizeIntegrity compares the canonical size set per product against the
// sizes stocked (on_hand > 0) at each store that carries the product. Only
// (store, product) pairs with demand history matter; pairs with no position
// rows at all are skipped.
func CheckSizeIntegrity(canonical map[uuid.UUID][]string, positions []Position) []SizeIntegrity {
	stocked := make(map[StoreProductKey]map[string]bool)
	demanded := make(map[StoreProductKey]bool)
	for _, pos := range positions {
		key := StoreProductKey{StoreID: pos.StoreID, ProductID: pos.ProductID}
		if stocked[key] == nil {
			stocked[key] = make(map[string]bool)
		}
		if pos.OnHand > 0 {
			stocked[key][pos.SizeCode] = true
		}
		if pos.Velocity > 0 {
			demanded[key] = true
		}
	}

	keys := make([]StoreProductKey, 0, len(stocked))
	for key := range stocked {
		if demanded[key] {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].StoreID != keys[j].StoreID {
			return keys[i].StoreID.String() < keys[j].StoreID.String()
		}
		return keys[i].ProductID.String() < keys[j].ProductID.String()
	})

	records := make([]SizeIntegrity, 0, len(keys))
	for _, key := range keys {
		expected := canonical[key.ProductID]
		if len(expected) == 0 {
			continue
		}
		var missing []string
		for _, size := range expected {
			if !stocked[key][size] {
				missing = append(missing, size)
			}
		}
		sort.Strings(missing)
		records = append(records, SizeIntegrity{
			StoreID:        key.StoreID,
			ProductID:      key.ProductID,
			SizesExpected:  len(expected),
			SizesAvailable: len(expected) - len(missing),
			IsFullSizeRun:  len(missing) == 0,
			MissingSizes:   missing,
		})
	}
	return records
}

// MissingSizeIndex reshapes integrity records into the lookup the lateral
// planner consumes.
func MissingSizeIndex(records []SizeIntegrity) map[StoreProductKey]map[string]bool {
	index := make(map[StoreProductKey]map[string]bool)
	for _, rec := range records {
		if len(rec.MissingSizes) == 0 {
			continue
		}
		key := StoreProductKey{StoreID: rec.StoreID, ProductID: rec.ProductID}
		index[key] = make(map[string]bool, len(rec.MissingSizes))
		for _, size := range rec.MissingSizes {
			index[key][size] = true
		}
	}
	return index
}
