package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops-labs/retailops-backend/pkg/db/models"
	"github.com/retailops-labs/retailops-backend/pkg/enums"
)

// Entity types recorded on the trail.
const (
	EntityTypeSuggestion = "rebalance_suggestion"
	EntityTypeRun        = "allocation_run"
)

// Service records and reads the append-only audit trail.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Record(ctx context.Context, input RecordEntryInput) (*models.AuditLogEntry, error)
	Trail(ctx context.Context, entityType string, entityID uuid.UUID) ([]models.AuditLogEntry, error)
}

type service struct {
	repo Repository
}

// RecordEntryInput captures one immutable audit event.
type RecordEntryInput struct {
	TenantID    uuid.UUID
	EntityType  string
	EntityID    uuid.UUID
	Action      enums.AuditAction
	OldValues   json.RawMessage
	NewValues   json.RawMessage
	PerformedBy *uuid.UUID
	Notes       *string
}

// NewService wires an audit service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Record(ctx context.Context, input RecordEntryInput) (*models.AuditLogEntry, error) {
	if input.TenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant id is required")
	}
	if input.EntityType == "" {
		return nil, fmt.Errorf("entity type is required")
	}
	if input.EntityID == uuid.Nil {
		return nil, fmt.Errorf("entity id is required")
	}
	if !input.Action.IsValid() {
		return nil, fmt.Errorf("invalid audit action %q", input.Action)
	}

	entry := &models.AuditLogEntry{
		TenantID:    input.TenantID,
		EntityType:  input.EntityType,
		EntityID:    input.EntityID,
		Action:      input.Action,
		OldValues:   input.OldValues,
		NewValues:   input.NewValues,
		PerformedBy: input.PerformedBy,
		Notes:       input.Notes,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) Trail(ctx context.Context, entityType string, entityID uuid.UUID) ([]models.AuditLogEntry, error) {
	if entityType == "" {
		return nil, fmt.Errorf("entity type is required")
	}
	if entityID == uuid.Nil {
		return nil, fmt.Errorf("entity id is required")
	}
	return s.repo.ListByEntity(ctx, entityType, entityID)
}

// StatusValues marshals a status into the old/new values payload used for
// suggestion transitions.
func StatusValues(status enums.SuggestionStatus, extra map[string]any) json.RawMessage {
	payload := map[string]any{"status": status.String()}
	for k, v := range extra {
		payload[k] = v
	}
	raw, _ := json.Marshal(payload)
	return raw
}
