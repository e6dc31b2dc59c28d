package allocruns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops-labs/retailops-backend/internal/audit"
	"github.com/retailops-labs/retailops-backend/internal/planner"
	"github.com/retailops-labs/retailops-backend/internal/snapshots"
	"github.com/retailops-labs/retailops-backend/internal/suggestions"
	"github.com/retailops-labs/retailops-backend/pkg/config"
	"github.com/retailops-labs/retailops-backend/pkg/db/models"
	"github.com/retailops-labs/retailops-backend/pkg/enums"
	pkgerrors "github.com/retailops-labs/retailops-backend/pkg/errors"
	"github.com/retailops-labs/retailops-backend/pkg/logger"
	"github.com/retailops-labs/retailops-backend/pkg/metrics"
	"github.com/retailops-labs/retailops-backend/pkg/pagination"
)

// txRunner matches db.Client's transaction helper.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// runLocker is the slice of the redis client used to serialize runs per
// tenant. At most one in-flight run per tenant; a second trigger is rejected,
// never queued.
type runLocker interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	RunLockKey(tenantID string) string
}

// Service owns the allocation run lifecycle.
type Service interface {
	TriggerRun(ctx context.Context, input TriggerRunInput) (*models.AllocationRun, error)
	Get(ctx context.Context, tenantID, runID uuid.UUID) (*RunDetail, error)
	List(ctx context.Context, tenantID uuid.UUID, params pagination.Params) (*Page, error)
}

// TriggerRunInput identifies the tenant and planner selection for one run.
type TriggerRunInput struct {
	TenantID    uuid.UUID
	RunType     enums.RunType
	TriggeredBy *uuid.UUID
}

// Page is one page of runs plus the cursor for the next one.
type Page struct {
	Runs       []models.AllocationRun
	NextCursor string
}

// RunDetail is a run plus how its suggestions have fared since it completed.
type RunDetail struct {
	Run          models.AllocationRun             `json:"run"`
	StatusCounts map[enums.SuggestionStatus]int64 `json:"status_counts"`
}

type service struct {
	runs        Repository
	suggestions suggestions.Repository
	snapshots   snapshots.Service
	audit       audit.Service
	tx          txRunner
	locker      runLocker
	engine      config.EngineConfig
	metrics     *metrics.RunMetrics
	logg        *logger.Logger
}

// NewService wires the orchestrator with its collaborators.
func NewService(
	runs Repository,
	suggestionRepo suggestions.Repository,
	snapshotSvc snapshots.Service,
	auditSvc audit.Service,
	tx txRunner,
	locker runLocker,
	engine config.EngineConfig,
	runMetrics *metrics.RunMetrics,
	logg *logger.Logger,
) (Service, error) {
	if runs == nil {
		return nil, fmt.Errorf("run repository required")
	}
	if suggestionRepo == nil {
		return nil, fmt.Errorf("suggestion repository required")
	}
	if snapshotSvc == nil {
		return nil, fmt.Errorf("snapshot service required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if locker == nil {
		return nil, fmt.Errorf("run locker required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		runs:        runs,
		suggestions: suggestionRepo,
		snapshots:   snapshotSvc,
		audit:       auditSvc,
		tx:          tx,
		locker:      locker,
		engine:      engine,
		metrics:     runMetrics,
		logg:        logg,
	}, nil
}

// TriggerRun executes one full planning cycle: snapshot, plan, score, then a
// single atomic commit that supersedes stale pending suggestions and inserts
// the new run with its suggestions. Nothing is persisted before that commit,
// so an aborted run leaves no trace beyond a failed run record.
func (s *service) TriggerRun(ctx context.Context, input TriggerRunInput) (*models.AllocationRun, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if !input.RunType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid run type %q", input.RunType))
	}

	lockKey := s.locker.RunLockKey(input.TenantID.String())
	runID := uuid.New()
	acquired, err := s.locker.SetNX(ctx, lockKey, runID.String(), s.engine.RunLockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquiring run lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "an allocation run is already in progress for this tenant")
	}
	defer func() {
		if err := s.locker.Del(context.WithoutCancel(ctx), lockKey); err != nil {
			s.logg.Error(ctx, "releasing run lock", err)
		}
	}()

	ctx = s.logg.WithRunID(s.logg.WithTenantID(ctx, input.TenantID.String()), runID.String())

	run := &models.AllocationRun{
		ID:          runID,
		TenantID:    input.TenantID,
		RunType:     input.RunType,
		Status:      enums.RunStatusCreated,
		TriggeredBy: input.TriggeredBy,
	}

	snap, err := s.snapshots.LoadRunSnapshot(ctx, input.TenantID)
	if err != nil {
		s.failRun(ctx, run, fmt.Sprintf("loading snapshot: %v", err))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading run snapshot")
	}

	thresholds := planner.ThresholdsFromConfig(s.engine)
	var candidates []planner.Candidate
	if input.RunType.IncludesPush() {
		candidates = append(candidates, planner.PlanPush(snap.Snapshot, thresholds)...)
	}
	if input.RunType.IncludesLateral() {
		candidates = append(candidates, planner.PlanLateral(snap.Snapshot, thresholds)...)
	}
	scored := planner.Score(candidates, snap.Snapshot, snap.Prices, thresholds)

	totalUnits := 0
	for _, c := range scored {
		totalUnits += c.Qty
	}
	run.TotalSuggestions = len(scored)
	run.TotalUnits = totalUnits
	run.SkippedRows = snap.Skipped

	if err := s.commitRun(ctx, run, scored); err != nil {
		s.failRun(ctx, run, fmt.Sprintf("persisting run: %v", err))
		s.observe(run)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting allocation run")
	}

	s.observe(run)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"suggestions": run.TotalSuggestions,
		"units":       run.TotalUnits,
		"skipped":     run.SkippedRows,
	}), "allocation run completed")
	return run, nil
}

// commitRun performs the single atomic supersede-and-insert. An empty run
// still commits: it supersedes stale pending suggestions so the latest run
// always owns every pending suggestion of its transfer types.
func (s *service) commitRun(ctx context.Context, run *models.AllocationRun, scored []planner.ScoredCandidate) error {
	now := time.Now().UTC()
	run.Status = enums.RunStatusCompleted
	run.CompletedAt = &now

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		suggestionRepo := s.suggestions.WithTx(tx)
		auditSvc := s.audit.WithTx(tx)

		supersededIDs, err := suggestionRepo.SupersedePending(ctx, run.TenantID, transferTypesFor(run.RunType), run.ID)
		if err != nil {
			return fmt.Errorf("superseding pending suggestions: %w", err)
		}
		for _, id := range supersededIDs {
			if _, err := auditSvc.Record(ctx, audit.RecordEntryInput{
				TenantID:    run.TenantID,
				EntityType:  audit.EntityTypeSuggestion,
				EntityID:    id,
				Action:      enums.AuditActionSuperseded,
				OldValues:   audit.StatusValues(enums.SuggestionStatusPending, nil),
				NewValues:   audit.StatusValues(enums.SuggestionStatusSuperseded, map[string]any{"run_id": run.ID.String()}),
				PerformedBy: run.TriggeredBy,
			}); err != nil {
				return fmt.Errorf("recording supersession: %w", err)
			}
		}

		if err := s.runs.WithTx(tx).Create(ctx, run); err != nil {
			return fmt.Errorf("inserting run: %w", err)
		}

		rows := buildSuggestions(run, scored)
		if err := suggestionRepo.CreateBatch(ctx, rows); err != nil {
			return fmt.Errorf("inserting suggestions: %w", err)
		}
		for _, row := range rows {
			if _, err := auditSvc.Record(ctx, audit.RecordEntryInput{
				TenantID:   run.TenantID,
				EntityType: audit.EntityTypeSuggestion,
				EntityID:   row.ID,
				Action:     enums.AuditActionCreated,
				NewValues: audit.StatusValues(enums.SuggestionStatusPending, map[string]any{
					"run_id":        run.ID.String(),
					"qty":           row.Qty,
					"transfer_type": row.TransferType.String(),
				}),
				PerformedBy: run.TriggeredBy,
			}); err != nil {
				return fmt.Errorf("recording suggestion creation: %w", err)
			}
		}
		return nil
	})
}

// failRun records the terminal failed state. Best effort: the run itself
// already failed, so a second persistence error is only logged.
func (s *service) failRun(ctx context.Context, run *models.AllocationRun, reason string) {
	now := time.Now().UTC()
	run.Status = enums.RunStatusFailed
	run.FailureReason = &reason
	run.CompletedAt = &now
	if err := s.runs.Create(ctx, run); err != nil {
		s.logg.Error(ctx, "recording failed run", err)
	}
}

func (s *service) observe(run *models.AllocationRun) {
	s.metrics.ObserveRun(run.RunType.String(), run.Status.String(), run.TotalSuggestions, run.TotalUnits)
}

func (s *service) Get(ctx context.Context, tenantID, runID uuid.UUID) (*RunDetail, error) {
	if tenantID == uuid.Nil || runID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id and run id required")
	}
	run, err := s.runs.Find(ctx, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "allocation run not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load allocation run")
	}
	if run.TenantID != tenantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "allocation run not found")
	}

	detail := &RunDetail{Run: *run, StatusCounts: make(map[enums.SuggestionStatus]int64)}
	for _, status := range enums.SuggestionStatuses() {
		count, err := s.suggestions.CountByRunAndStatus(ctx, run.ID, status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count run suggestions")
		}
		detail.StatusCounts[status] = count
	}
	return detail, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params) (*Page, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	runs, err := s.runs.List(ctx, tenantID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list allocation runs")
	}

	page := &Page{Runs: runs}
	limit := pagination.NormalizeLimit(params.Limit)
	if len(runs) > limit {
		page.Runs = runs[:limit]
		last := page.Runs[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func transferTypesFor(runType enums.RunType) []enums.TransferType {
	var types []enums.TransferType
	if runType.IncludesPush() {
		types = append(types, enums.TransferTypePush)
	}
	if runType.IncludesLateral() {
		types = append(types, enums.TransferTypeLateral)
	}
	return types
}

func buildSuggestions(run *models.AllocationRun, scored []planner.ScoredCandidate) []models.RebalanceSuggestion {
	rows := make([]models.RebalanceSuggestion, 0, len(scored))
	for _, c := range scored {
		rows = append(rows, models.RebalanceSuggestion{
			ID:                   uuid.New(),
			RunID:                run.ID,
			TenantID:             run.TenantID,
			ProductID:            c.ProductID,
			SizeCode:             c.SizeCode,
			TransferType:         c.TransferType,
			FromStoreID:          c.FromStoreID,
			ToStoreID:            c.ToStoreID,
			Qty:                  c.Qty,
			Priority:             c.Priority,
			PotentialRevenueGain: c.PotentialRevenueGain,
			Status:               enums.SuggestionStatusPending,
		})
	}
	return rows
}
