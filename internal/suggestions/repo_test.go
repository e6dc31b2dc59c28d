package suggestions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/retailops-labs/retailops-backend/pkg/db/models"
	"github.com/retailops-labs/retailops-backend/pkg/enums"
	"github.com/retailops-labs/retailops-backend/pkg/pagination"
)

func setupSuggestionTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS rebalance_suggestions (
  id TEXT PRIMARY KEY,
  run_id TEXT NOT NULL,
  tenant_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  size_code TEXT NOT NULL,
  transfer_type TEXT NOT NULL,
  from_store_id TEXT NOT NULL,
  to_store_id TEXT NOT NULL,
  qty INTEGER NOT NULL,
  priority TEXT NOT NULL,
  potential_revenue_gain TEXT NOT NULL DEFAULT '0',
  status TEXT NOT NULL,
  approved_by TEXT,
  approved_at DATETIME,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)

	return db
}

func newSuggestion(tenantID, runID uuid.UUID, status enums.SuggestionStatus, transferType enums.TransferType) models.RebalanceSuggestion {
	return models.RebalanceSuggestion{
		ID:                   uuid.New(),
		RunID:                runID,
		TenantID:             tenantID,
		ProductID:            uuid.New(),
		SizeCode:             "M",
		TransferType:         transferType,
		FromStoreID:          uuid.New(),
		ToStoreID:            uuid.New(),
		Qty:                  12,
		Priority:             enums.PriorityP2,
		PotentialRevenueGain: decimal.NewFromInt(240),
		Status:               status,
	}
}

func TestRepository_TransitionStatusCompareAndSet(t *testing.T) {
	db := setupSuggestionTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	row := newSuggestion(tenantID, uuid.New(), enums.SuggestionStatusPending, enums.TransferTypePush)
	require.NoError(t, repo.CreateBatch(ctx, []models.RebalanceSuggestion{row}))

	actor := uuid.New()
	now := time.Now().UTC()
	rows, err := repo.TransitionStatus(ctx, row.ID, enums.SuggestionStatusPending, enums.SuggestionStatusApproved, map[string]any{
		"approved_by": actor,
		"approved_at": now,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	found, err := repo.Find(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SuggestionStatusApproved, found.Status)
	require.NotNil(t, found.ApprovedBy)
	assert.Equal(t, actor, *found.ApprovedBy)

	// Same precondition again: the row already moved, so the update must
	// match zero rows instead of silently re-applying.
	rows, err = repo.TransitionStatus(ctx, row.ID, enums.SuggestionStatusPending, enums.SuggestionStatusRejected, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	found, err = repo.Find(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SuggestionStatusApproved, found.Status)
}

func TestRepository_SupersedePendingLeavesDecidedRowsAlone(t *testing.T) {
	db := setupSuggestionTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	otherTenant := uuid.New()
	oldRun := uuid.New()
	newRun := uuid.New()

	pendingPush := newSuggestion(tenantID, oldRun, enums.SuggestionStatusPending, enums.TransferTypePush)
	pendingLateral := newSuggestion(tenantID, oldRun, enums.SuggestionStatusPending, enums.TransferTypeLateral)
	approved := newSuggestion(tenantID, oldRun, enums.SuggestionStatusApproved, enums.TransferTypePush)
	executed := newSuggestion(tenantID, oldRun, enums.SuggestionStatusExecuted, enums.TransferTypePush)
	fromNewRun := newSuggestion(tenantID, newRun, enums.SuggestionStatusPending, enums.TransferTypePush)
	foreignTenant := newSuggestion(otherTenant, uuid.New(), enums.SuggestionStatusPending, enums.TransferTypePush)

	require.NoError(t, repo.CreateBatch(ctx, []models.RebalanceSuggestion{
		pendingPush, pendingLateral, approved, executed, fromNewRun, foreignTenant,
	}))

	ids, err := repo.SupersedePending(ctx, tenantID, []enums.TransferType{enums.TransferTypePush}, newRun)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, pendingPush.ID, ids[0])

	expect := map[uuid.UUID]enums.SuggestionStatus{
		pendingPush.ID:    enums.SuggestionStatusSuperseded,
		pendingLateral.ID: enums.SuggestionStatusPending,
		approved.ID:       enums.SuggestionStatusApproved,
		executed.ID:       enums.SuggestionStatusExecuted,
		fromNewRun.ID:     enums.SuggestionStatusPending,
		foreignTenant.ID:  enums.SuggestionStatusPending,
	}
	for id, want := range expect {
		found, err := repo.Find(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, found.Status, "suggestion %s", id)
	}
}

func TestRepository_SupersedePendingSkipsConcurrentlyDecidedRow(t *testing.T) {
	db := setupSuggestionTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	oldRun := uuid.New()
	contested := newSuggestion(tenantID, oldRun, enums.SuggestionStatusPending, enums.TransferTypePush)
	stale := newSuggestion(tenantID, oldRun, enums.SuggestionStatusPending, enums.TransferTypePush)
	require.NoError(t, repo.CreateBatch(ctx, []models.RebalanceSuggestion{contested, stale}))

	// An approval lands just as the sweep's UPDATE is about to run. The
	// status predicate on the UPDATE itself must keep the decided row out.
	fired := false
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("approve_midflight", func(tx *gorm.DB) {
		if fired {
			return
		}
		fired = true
		sess := tx.Session(&gorm.Session{NewDB: true})
		require.NoError(t, sess.Exec(
			"UPDATE rebalance_suggestions SET status = ? WHERE id = ?",
			enums.SuggestionStatusApproved, contested.ID,
		).Error)
	}))
	t.Cleanup(func() {
		require.NoError(t, db.Callback().Update().Remove("approve_midflight"))
	})

	ids, err := repo.SupersedePending(ctx, tenantID, []enums.TransferType{enums.TransferTypePush}, uuid.New())
	require.NoError(t, err)
	require.True(t, fired)
	require.Len(t, ids, 1)
	assert.Equal(t, stale.ID, ids[0])

	found, err := repo.Find(ctx, contested.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SuggestionStatusApproved, found.Status)
}

func TestRepository_SupersedePendingCoversBothTransferTypes(t *testing.T) {
	db := setupSuggestionTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	oldRun := uuid.New()
	push := newSuggestion(tenantID, oldRun, enums.SuggestionStatusPending, enums.TransferTypePush)
	lateral := newSuggestion(tenantID, oldRun, enums.SuggestionStatusPending, enums.TransferTypeLateral)
	require.NoError(t, repo.CreateBatch(ctx, []models.RebalanceSuggestion{push, lateral}))

	ids, err := repo.SupersedePending(ctx, tenantID,
		[]enums.TransferType{enums.TransferTypePush, enums.TransferTypeLateral}, uuid.New())
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	ids, err = repo.SupersedePending(ctx, tenantID,
		[]enums.TransferType{enums.TransferTypePush, enums.TransferTypeLateral}, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRepository_ListPaginatesNewestFirst(t *testing.T) {
	db := setupSuggestionTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	runID := uuid.New()
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	var seeded []models.RebalanceSuggestion
	for i := 0; i < 3; i++ {
		row := newSuggestion(tenantID, runID, enums.SuggestionStatusPending, enums.TransferTypePush)
		row.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		row.UpdatedAt = row.CreatedAt
		seeded = append(seeded, row)
	}
	require.NoError(t, repo.CreateBatch(ctx, seeded))

	first, err := repo.List(ctx, tenantID, ListFilter{}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	// LimitWithBuffer fetches one extra row so callers can detect more pages.
	require.Len(t, first, 3)
	assert.Equal(t, seeded[2].ID, first[0].ID)
	assert.Equal(t, seeded[1].ID, first[1].ID)

	cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID})
	second, err := repo.List(ctx, tenantID, ListFilter{}, pagination.Params{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, seeded[0].ID, second[0].ID)

	status := enums.SuggestionStatusExecuted
	none, err := repo.List(ctx, tenantID, ListFilter{Status: &status}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, none)
}
