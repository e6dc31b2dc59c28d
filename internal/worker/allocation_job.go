package worker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/retailops-labs/retailops-backend/internal/allocruns"
	"github.com/retailops-labs/retailops-backend/pkg/enums"
	pkgerrors "github.com/retailops-labs/retailops-backend/pkg/errors"
	"github.com/retailops-labs/retailops-backend/pkg/logger"
)

// tenantSource yields the tenants the scheduled job plans for.
type tenantSource interface {
	ActiveTenants(ctx context.Context) ([]uuid.UUID, error)
}

// AllocationJobParams configure the scheduled allocation job.
type AllocationJobParams struct {
	Logger  *logger.Logger
	Tenants tenantSource
	Runs    allocruns.Service
	RunType enums.RunType
}

type allocationJob struct {
	logg    *logger.Logger
	tenants tenantSource
	runs    allocruns.Service
	runType enums.RunType
}

// NewAllocationJob builds the job that triggers one allocation run per active
// tenant each cycle.
func NewAllocationJob(params AllocationJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Tenants == nil {
		return nil, fmt.Errorf("tenant source required")
	}
	if params.Runs == nil {
		return nil, fmt.Errorf("run service required")
	}
	runType := params.RunType
	if !runType.IsValid() {
		runType = enums.RunTypeBoth
	}
	return &allocationJob{
		logg:    params.Logger,
		tenants: params.Tenants,
		runs:    params.Runs,
		runType: runType,
	}, nil
}

func (j *allocationJob) Name() string { return "allocation-run" }

func (j *allocationJob) Run(ctx context.Context) error {
	tenants, err := j.tenants.ActiveTenants(ctx)
	if err != nil {
		return fmt.Errorf("list tenants: %w", err)
	}

	var errs []error
	triggered := 0
	for _, tenantID := range tenants {
		run, err := j.runs.TriggerRun(ctx, allocruns.TriggerRunInput{
			TenantID: tenantID,
			RunType:  j.runType,
		})
		if err != nil {
			// A manually triggered run may hold the tenant lock; skip,
			// the next cycle picks the tenant up again.
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
				j.logg.Info(j.logg.WithTenantID(ctx, tenantID.String()), "run already in progress; skipping tenant")
				continue
			}
			errs = append(errs, fmt.Errorf("tenant %s: %w", tenantID, err))
			continue
		}
		triggered++
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"tenant_id":   tenantID.String(),
			"run_id":      run.ID.String(),
			"suggestions": run.TotalSuggestions,
		})
		j.logg.Info(logCtx, "scheduled allocation run completed")
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"tenants":   len(tenants),
		"triggered": triggered,
		"failed":    len(errs),
	})
	j.logg.Info(logCtx, "allocation job cycle complete")
	return multierr.Combine(errs...)
}

// StoreTenantSource discovers tenants from active stores.
type StoreTenantSource struct {
	db *gorm.DB
}

// NewStoreTenantSource builds a tenant source over the stores table.
func NewStoreTenantSource(db *gorm.DB) (*StoreTenantSource, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &StoreTenantSource{db: db}, nil
}

// ActiveTenants returns every tenant with at least one active store.
func (s *StoreTenantSource) ActiveTenants(ctx context.Context) ([]uuid.UUID, error) {
	var tenantIDs []uuid.UUID
	if err := s.db.WithContext(ctx).
		Table("stores").
		Where("active = ?", true).
		Distinct("tenant_id").
		Order("tenant_id ASC").
		Pluck("tenant_id", &tenantIDs).Error; err != nil {
		return nil, err
	}
	return tenantIDs, nil
}
