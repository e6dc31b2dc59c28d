package suggestions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops-labs/retailops-backend/internal/audit"
	"github.com/retailops-labs/retailops-backend/pkg/db/models"
	"github.com/retailops-labs/retailops-backend/pkg/enums"
	pkgerrors "github.com/retailops-labs/retailops-backend/pkg/errors"
	"github.com/retailops-labs/retailops-backend/pkg/pagination"
)

// DecisionAction is the operator's verdict on a pending suggestion.
type DecisionAction string

const (
	DecisionApprove DecisionAction = "approve"
	DecisionReject  DecisionAction = "reject"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the approval workflow for rebalance suggestions.
type Service interface {
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) (*Page, error)
	Decide(ctx context.Context, input DecideInput) (*models.RebalanceSuggestion, error)
	MarkExecuted(ctx context.Context, tenantID, suggestionID, actorID uuid.UUID) (*models.RebalanceSuggestion, error)
}

// Page is one cursor page of suggestions.
type Page struct {
	Suggestions []models.RebalanceSuggestion
	NextCursor  string
}

// DecideInput captures an operator decision on a pending suggestion.
type DecideInput struct {
	TenantID     uuid.UUID
	SuggestionID uuid.UUID
	Action       DecisionAction
	ActorID      uuid.UUID
	Notes        *string
	// QtyOverride lets the operator approve a different quantity. The
	// adjustment is captured on the audit trail.
	QtyOverride *int
}

type service struct {
	repo  Repository
	tx    txRunner
	audit audit.Service
}

// NewService wires the suggestion workflow with its dependencies.
func NewService(repo Repository, tx txRunner, auditSvc audit.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("suggestions repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	return &service{repo: repo, tx: tx, audit: auditSvc}, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) (*Page, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}

	rows, err := s.repo.List(ctx, tenantID, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suggestions")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	page := &Page{Suggestions: rows}
	if len(rows) > limit {
		page.Suggestions = rows[:limit]
		last := page.Suggestions[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) Decide(ctx context.Context, input DecideInput) (*models.RebalanceSuggestion, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if input.SuggestionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "suggestion id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	var target enums.SuggestionStatus
	switch input.Action {
	case DecisionApprove:
		target = enums.SuggestionStatusApproved
	case DecisionReject:
		target = enums.SuggestionStatusRejected
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid decision action %q", input.Action))
	}
	if input.QtyOverride != nil {
		if input.Action != DecisionApprove {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty override is only valid when approving")
		}
		if *input.QtyOverride <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty override must be positive")
		}
	}

	updates := map[string]any{}
	if input.Action == DecisionApprove {
		updates["approved_by"] = input.ActorID
		updates["approved_at"] = time.Now().UTC()
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}

	extra := map[string]any{}
	if input.QtyOverride != nil {
		extra["qty"] = *input.QtyOverride
	}

	return s.transition(ctx, input.TenantID, input.SuggestionID, target, input.ActorID, input.Notes, updates, extra)
}

func (s *service) MarkExecuted(ctx context.Context, tenantID, suggestionID, actorID uuid.UUID) (*models.RebalanceSuggestion, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if suggestionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "suggestion id required")
	}
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	return s.transition(ctx, tenantID, suggestionID, enums.SuggestionStatusExecuted, actorID, nil, map[string]any{}, nil)
}

// transition applies one workflow step under a per-suggestion compare-and-set
// and records exactly one audit entry for it in the same transaction.
func (s *service) transition(
	ctx context.Context,
	tenantID uuid.UUID,
	suggestionID uuid.UUID,
	target enums.SuggestionStatus,
	actorID uuid.UUID,
	notes *string,
	updates map[string]any,
	auditExtra map[string]any,
) (*models.RebalanceSuggestion, error) {
	var result *models.RebalanceSuggestion
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		suggestion, err := repo.Find(ctx, suggestionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "suggestion not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load suggestion")
		}
		if suggestion.TenantID != tenantID {
			// Rows belonging to other tenants are invisible, not forbidden.
			return pkgerrors.New(pkgerrors.CodeNotFound, "suggestion not found")
		}

		current := suggestion.Status
		if !current.CanTransitionTo(target) {
			return pkgerrors.New(
				pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move suggestion from %q to %q", current, target),
			)
		}

		rows, err := repo.TransitionStatus(ctx, suggestionID, current, target, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update suggestion status")
		}
		if rows == 0 {
			// Lost the compare-and-set to a concurrent decision.
			return pkgerrors.New(pkgerrors.CodeStateConflict, "suggestion was modified concurrently")
		}

		action, err := enums.AuditActionForStatus(target)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "map audit action")
		}
		actor := actorID
		if _, err := s.audit.WithTx(tx).Record(ctx, audit.RecordEntryInput{
			TenantID:    suggestion.TenantID,
			EntityType:  audit.EntityTypeSuggestion,
			EntityID:    suggestion.ID,
			Action:      action,
			OldValues:   audit.StatusValues(current, nil),
			NewValues:   audit.StatusValues(target, auditExtra),
			PerformedBy: &actor,
			Notes:       notes,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record audit entry")
		}

		updated, err := repo.Find(ctx, suggestionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload suggestion")
		}
		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
