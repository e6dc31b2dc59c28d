package enums

import "fmt"

// AuditAction names the event an audit log entry records.
type AuditAction string

const (
	AuditActionCreated    AuditAction = "created"
	AuditActionApproved   AuditAction = "approved"
	AuditActionRejected   AuditAction = "rejected"
	AuditActionExecuted   AuditAction = "executed"
	AuditActionSuperseded AuditAction = "superseded"
)

var validAuditActions = []AuditAction{
	AuditActionCreated,
	AuditActionApproved,
	AuditActionRejected,
	AuditActionExecuted,
	AuditActionSuperseded,
}

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// AuditActionForStatus maps a suggestion status transition to its audit action.
func AuditActionForStatus(status SuggestionStatus) (AuditAction, error) {
	switch status {
	case SuggestionStatusApproved:
		return AuditActionApproved, nil
	case SuggestionStatusRejected:
		return AuditActionRejected, nil
	case SuggestionStatusExecuted:
		return AuditActionExecuted, nil
	case SuggestionStatusSuperseded:
		return AuditActionSuperseded, nil
	default:
		return "", fmt.Errorf("no audit action for status %q", status)
	}
}
