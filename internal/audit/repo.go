package audit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops-labs/retailops-backend/pkg/db/models"
)

// Repository manages persistence for audit log entries. The table is
// insert-only; there are no update or delete operations by design of the
// trail, so none are exposed here.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.AuditLogEntry) error
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]models.AuditLogEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an audit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("performed_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
