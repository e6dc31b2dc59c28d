package planner

import (
	"testing"

	"github.com/retailops-labs/retailops-backend/pkg/enums"
)

func TestPlanLateralPairScenario(t *testing.T) {
	th := testThresholds()
	storeC := fixedUUID(0x0c)
	storeD := fixedUUID(0x0d)
	productID := fixedUUID(0xf1)

	snap := &Snapshot{
		Stores: []StoreInfo{
			{ID: storeC, Tier: enums.StoreTierB, Capacity: 1000},
			{ID: storeD, Tier: enums.StoreTierB, Capacity: 1000},
		},
		Positions: []Position{
			{ProductID: productID, StoreID: storeC, SizeCode: "Y", OnHand: 50, SafetyStock: 5, WeeksOfCover: 12, Velocity: 1, Trend: enums.DemandTrendDecelerating},
			{ProductID: productID, StoreID: storeD, SizeCode: "Y", OnHand: 2, SafetyStock: 10, WeeksOfCover: 1, Velocity: 1, Trend: enums.DemandTrendFlat},
		},
	}

	got := PlanLateral(snap, th)
	if len(got) != 1 {
		t.Fatalf("expected one lateral suggestion, got %d: %+v", len(got), got)
	}
	cand := got[0]
	if cand.FromStoreID != storeC || cand.ToStoreID != storeD {
		t.Fatalf("expected C->D, got %s->%s", cand.FromStoreID, cand.ToStoreID)
	}
	// Surplus at C is 50 - ceil(1*7*2) = 36; deficit at D is 8.
	if cand.Qty != 8 {
		t.Fatalf("expected qty 8, got %d", cand.Qty)
	}
	if cand.TransferType != enums.TransferTypeLateral {
		t.Fatalf("unexpected transfer type %s", cand.TransferType)
	}
}

func TestPlanLateralRequiresLowTrendSource(t *testing.T) {
	th := testThresholds()
	source := fixedUUID(0x0c)
	dest := fixedUUID(0x0d)
	productID := fixedUUID(0xf1)

	snap := &Snapshot{
		Stores: []StoreInfo{
			{ID: source, Capacity: 1000},
			{ID: dest, Capacity: 1000},
		},
		Positions: []Position{
			{ProductID: productID, StoreID: source, SizeCode: "Y", OnHand: 50, WeeksOfCover: 12, Velocity: 1, Trend: enums.DemandTrendAccelerating},
			{ProductID: productID, StoreID: dest, SizeCode: "Y", OnHand: 2, SafetyStock: 10, WeeksOfCover: 1, Velocity: 1},
		},
	}

	if got := PlanLateral(snap, th); len(got) != 0 {
		t.Fatalf("accelerating stores must not be drained, got %+v", got)
	}
}

func TestPlanLateralNoSelfTransfer(t *testing.T) {
	th := testThresholds()
	productA := fixedUUID(0xa1)
	productB := fixedUUID(0xb1)
	storeX := fixedUUID(0x0e)
	storeY := fixedUUID(0x0f)

	// X is a source for product A and a destination for product B.
	snap := &Snapshot{
		Stores: []StoreInfo{
			{ID: storeX, Capacity: 1000},
			{ID: storeY, Capacity: 1000},
		},
		Positions: []Position{
			{ProductID: productA, StoreID: storeX, SizeCode: "M", OnHand: 60, SafetyStock: 5, WeeksOfCover: 10, Velocity: 0.5, Trend: enums.DemandTrendFlat},
			{ProductID: productA, StoreID: storeY, SizeCode: "M", OnHand: 1, SafetyStock: 10, WeeksOfCover: 0.5, Velocity: 2},
			{ProductID: productB, StoreID: storeY, SizeCode: "M", OnHand: 70, SafetyStock: 5, WeeksOfCover: 11, Velocity: 0.5, Trend: enums.DemandTrendDecelerating},
			{ProductID: productB, StoreID: storeX, SizeCode: "M", OnHand: 0, SafetyStock: 6, WeeksOfCover: 0, Velocity: 1},
		},
	}

	got := PlanLateral(snap, th)
	if len(got) != 2 {
		t.Fatalf("expected two lateral suggestions, got %d: %+v", len(got), got)
	}
	for _, cand := range got {
		if cand.FromStoreID == cand.ToStoreID {
			t.Fatalf("self transfer emitted: %+v", cand)
		}
	}
}

func TestPlanLateralMissingSizeDestination(t *testing.T) {
	th := testThresholds()
	source := fixedUUID(0x0c)
	dest := fixedUUID(0x0d)
	productID := fixedUUID(0xf1)

	// Destination has healthy aggregate cover but is missing the size; the
	// integrity signal keeps it eligible.
	snap := &Snapshot{
		Stores: []StoreInfo{
			{ID: source, Capacity: 1000},
			{ID: dest, Capacity: 1000},
		},
		Positions: []Position{
			{ProductID: productID, StoreID: source, SizeCode: "M", OnHand: 60, SafetyStock: 5, WeeksOfCover: 10, Velocity: 0.5, Trend: enums.DemandTrendFlat},
			{ProductID: productID, StoreID: dest, SizeCode: "M", OnHand: 0, SafetyStock: 4, WeeksOfCover: 5, Velocity: 1},
		},
		MissingSizes: map[StoreProductKey]map[string]bool{
			{StoreID: dest, ProductID: productID}: {"M": true},
		},
	}

	got := PlanLateral(snap, th)
	if len(got) != 1 {
		t.Fatalf("expected one suggestion for missing size, got %d", len(got))
	}
	if got[0].Qty != 4 {
		t.Fatalf("expected qty 4 (deficit), got %d", got[0].Qty)
	}

	// Without the integrity signal the same destination is ineligible.
	snap.MissingSizes = nil
	if got := PlanLateral(snap, th); len(got) != 0 {
		t.Fatalf("expected no suggestions without missing-size signal, got %+v", got)
	}
}

func TestPlanLateralMissingSizeWithoutPositionRow(t *testing.T) {
	th := testThresholds()
	source := fixedUUID(0x0c)
	dest := fixedUUID(0x0d)
	bare := fixedUUID(0x0e)
	productID := fixedUUID(0xf1)

	// Neither destination has a row for size L. dest carries the product in
	// other sizes, bare has never carried it at all; both must still surface
	// as destinations from the integrity signal alone.
	snap := &Snapshot{
		Stores: []StoreInfo{
			{ID: source, Capacity: 1000},
			{ID: dest, Capacity: 1000},
			{ID: bare, Capacity: 1000},
		},
		Positions: []Position{
			{ProductID: productID, StoreID: source, SizeCode: "L", OnHand: 60, SafetyStock: 5, WeeksOfCover: 10, Velocity: 0.5, Trend: enums.DemandTrendFlat},
			{ProductID: productID, StoreID: dest, SizeCode: "M", OnHand: 20, SafetyStock: 6, WeeksOfCover: 5, Velocity: 1},
		},
		MissingSizes: map[StoreProductKey]map[string]bool{
			{StoreID: dest, ProductID: productID}: {"L": true},
			{StoreID: bare, ProductID: productID}: {"L": true},
		},
	}

	got := PlanLateral(snap, th)
	if len(got) != 2 {
		t.Fatalf("expected two missing-size suggestions, got %d: %+v", len(got), got)
	}
	qtyByDest := make(map[string]int)
	for _, cand := range got {
		if cand.FromStoreID != source || cand.SizeCode != "L" {
			t.Fatalf("unexpected candidate %+v", cand)
		}
		qtyByDest[cand.ToStoreID.String()] = cand.Qty
	}
	// dest borrows safety stock from its sibling size; bare gets a single
	// seed unit.
	if qtyByDest[dest.String()] != 6 {
		t.Fatalf("expected qty 6 for sibling-backed store, got %d", qtyByDest[dest.String()])
	}
	if qtyByDest[bare.String()] != 1 {
		t.Fatalf("expected qty 1 seed for bare store, got %d", qtyByDest[bare.String()])
	}
}

func TestPlanLateralCapacityRespect(t *testing.T) {
	th := testThresholds()
	source := fixedUUID(0x0c)
	dest := fixedUUID(0x0d)
	productID := fixedUUID(0xf1)

	snap := &Snapshot{
		Stores: []StoreInfo{
			{ID: source, Capacity: 1000},
			{ID: dest, Capacity: 100},
		},
		Positions: []Position{
			{ProductID: productID, StoreID: source, SizeCode: "Y", OnHand: 100, SafetyStock: 5, WeeksOfCover: 12, Velocity: 1, Trend: enums.DemandTrendDecelerating},
			{ProductID: productID, StoreID: dest, SizeCode: "Y", OnHand: 80, SafetyStock: 120, WeeksOfCover: 1, Velocity: 3},
		},
	}

	got := PlanLateral(snap, th)
	if len(got) != 1 {
		t.Fatalf("expected one capped suggestion, got %d", len(got))
	}
	if got[0].Qty != 5 {
		t.Fatalf("expected qty 5 under the 85%% ceiling, got %d", got[0].Qty)
	}
	if 80+got[0].Qty > 100 {
		t.Fatalf("capacity violated: %d", 80+got[0].Qty)
	}
}
