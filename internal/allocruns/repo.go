package allocruns

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops-labs/retailops-backend/pkg/db/models"
	"github.com/retailops-labs/retailops-backend/pkg/pagination"
)

// Repository manages persistence for allocation runs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, run *models.AllocationRun) error
	Find(ctx context.Context, id uuid.UUID) (*models.AllocationRun, error)
	List(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.AllocationRun, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a run repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, run *models.AllocationRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.AllocationRun, error) {
	var run models.AllocationRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.AllocationRun, error) {
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var runs []models.AllocationRun
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
