package suggestions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailops-labs/retailops-backend/pkg/db/models"
	"github.com/retailops-labs/retailops-backend/pkg/enums"
	"github.com/retailops-labs/retailops-backend/pkg/pagination"
)

// ListFilter narrows a suggestion listing.
type ListFilter struct {
	Status   *enums.SuggestionStatus
	Priority *enums.Priority
	RunID    *uuid.UUID
}

// Repository manages persistence for rebalance suggestions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, id uuid.UUID) (*models.RebalanceSuggestion, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.RebalanceSuggestion, error)
	CreateBatch(ctx context.Context, suggestions []models.RebalanceSuggestion) error
	// TransitionStatus flips the status only when the row still holds the
	// expected current status. Returns the number of rows updated so callers
	// can detect a lost compare-and-set race.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.SuggestionStatus, updates map[string]any) (int64, error)
	// SupersedePending marks every still-pending suggestion from earlier
	// runs of the given transfer types as superseded and returns their ids.
	SupersedePending(ctx context.Context, tenantID uuid.UUID, transferTypes []enums.TransferType, excludeRunID uuid.UUID) ([]uuid.UUID, error)
	CountByRunAndStatus(ctx context.Context, runID uuid.UUID, status enums.SuggestionStatus) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a suggestion repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.RebalanceSuggestion, error) {
	var suggestion models.RebalanceSuggestion
	if err := r.db.WithContext(ctx).First(&suggestion, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.RebalanceSuggestion, error) {
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.RunID != nil {
		query = query.Where("run_id = ?", *filter.RunID)
	}

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

	var suggestions []models.RebalanceSuggestion
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&suggestions).Error; err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (r *repository) CreateBatch(ctx context.Context, suggestions []models.RebalanceSuggestion) error {
	if len(suggestions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&suggestions).Error
}

func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.SuggestionStatus, updates map[string]any) (int64, error) {
	values := map[string]any{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	for k, v := range updates {
		values[k] = v
	}
	result := r.db.WithContext(ctx).
		Model(&models.RebalanceSuggestion{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	return result.RowsAffected, result.Error
}

func (r *repository) SupersedePending(ctx context.Context, tenantID uuid.UUID, transferTypes []enums.TransferType, excludeRunID uuid.UUID) ([]uuid.UUID, error) {
	// Single compare-and-set UPDATE: the status predicate rides along so a
	// suggestion decided concurrently is never swept, and RETURNING hands back
	// exactly the rows that flipped.
	var swept []models.RebalanceSuggestion
	result := r.db.WithContext(ctx).
		Model(&swept).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}}}).
		Where("tenant_id = ? AND status = ? AND transfer_type IN ? AND run_id <> ?",
			tenantID, enums.SuggestionStatusPending, transferTypes, excludeRunID).
		Updates(map[string]any{
			"status":     enums.SuggestionStatusSuperseded,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if len(swept) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(swept))
	for _, row := range swept {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (r *repository) CountByRunAndStatus(ctx context.Context, runID uuid.UUID, status enums.SuggestionStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RebalanceSuggestion{}).
		Where("run_id = ? AND status = ?", runID, status).
		Count(&count).Error
	return count, err
}
