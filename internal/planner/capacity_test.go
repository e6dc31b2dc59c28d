package planner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops-labs/retailops-backend/pkg/enums"
)

func testThresholds() Thresholds {
	return Thresholds{
		PushThresholdWeeks:    2,
		SurplusThresholdWeeks: 8,
		OverloadedUtilization: 0.85,
		HasSpaceUtilization:   0.70,
		LeadTimeDays:          7,
		MaterialityFloor:      decimal.NewFromInt(500),
	}
}

func TestStoreLoadClassify(t *testing.T) {
	th := testThresholds()
	cases := []struct {
		name     string
		load     StoreLoad
		expected enums.CapacityClass
	}{
		{"overloaded", StoreLoad{Capacity: 100, OnHand: 86}, enums.CapacityClassOverloaded},
		{"upper boundary is nominal", StoreLoad{Capacity: 100, OnHand: 85}, enums.CapacityClassNominal},
		{"nominal", StoreLoad{Capacity: 100, OnHand: 75}, enums.CapacityClassNominal},
		{"lower boundary is nominal", StoreLoad{Capacity: 100, OnHand: 70}, enums.CapacityClassNominal},
		{"has space", StoreLoad{Capacity: 100, OnHand: 69}, enums.CapacityClassHasSpace},
		{"zero capacity is nominal", StoreLoad{Capacity: 0, OnHand: 9999}, enums.CapacityClassNominal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.load.Classify(th); got != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestStoreLoadHeadroom(t *testing.T) {
	th := testThresholds()

	load := StoreLoad{Capacity: 100, OnHand: 80}
	if got := load.Headroom(th); got != 5 {
		t.Fatalf("expected headroom 5, got %d", got)
	}

	over := StoreLoad{Capacity: 100, OnHand: 90}
	if got := over.Headroom(th); got != 0 {
		t.Fatalf("expected headroom 0 when above threshold, got %d", got)
	}

	unconstrained := StoreLoad{Capacity: 0, OnHand: 500}
	if got := unconstrained.Headroom(th); got < 1<<20 {
		t.Fatalf("zero capacity should be effectively unconstrained, got %d", got)
	}
}

func TestComputeLoadsSumsAcrossProducts(t *testing.T) {
	storeID := uuid.New()
	snap := &Snapshot{
		Stores: []StoreInfo{{ID: storeID, Capacity: 100}},
		Positions: []Position{
			{ProductID: uuid.New(), StoreID: storeID, SizeCode: "M", OnHand: 30},
			{ProductID: uuid.New(), StoreID: storeID, SizeCode: "L", OnHand: 25},
			{ProductID: uuid.New(), StoreID: uuid.New(), SizeCode: "M", OnHand: 99},
		},
	}
	loads := ComputeLoads(snap)
	if loads[storeID].OnHand != 55 {
		t.Fatalf("expected on-hand 55, got %d", loads[storeID].OnHand)
	}
}
