package enums

import "fmt"

// SuggestionStatus tracks the approval lifecycle of a rebalance suggestion.
type SuggestionStatus string

const (
	SuggestionStatusPending    SuggestionStatus = "pending"
	SuggestionStatusApproved   SuggestionStatus = "approved"
	SuggestionStatusRejected   SuggestionStatus = "rejected"
	SuggestionStatusExecuted   SuggestionStatus = "executed"
	SuggestionStatusSuperseded SuggestionStatus = "superseded"
)

var validSuggestionStatuses = []SuggestionStatus{
	SuggestionStatusPending,
	SuggestionStatusApproved,
	SuggestionStatusRejected,
	SuggestionStatusExecuted,
	SuggestionStatusSuperseded,
}

// SuggestionStatuses lists every lifecycle status, in lifecycle order.
func SuggestionStatuses() []SuggestionStatus {
	out := make([]SuggestionStatus, len(validSuggestionStatuses))
	copy(out, validSuggestionStatuses)
	return out
}

// String implements fmt.Stringer.
func (s SuggestionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SuggestionStatus.
func (s SuggestionStatus) IsValid() bool {
	for _, candidate := range validSuggestionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s SuggestionStatus) IsTerminal() bool {
	switch s {
	case SuggestionStatusRejected, SuggestionStatusExecuted, SuggestionStatusSuperseded:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the workflow allows moving to target.
// pending -> approved|rejected|superseded, approved -> executed.
func (s SuggestionStatus) CanTransitionTo(target SuggestionStatus) bool {
	switch s {
	case SuggestionStatusPending:
		return target == SuggestionStatusApproved ||
			target == SuggestionStatusRejected ||
			target == SuggestionStatusSuperseded
	case SuggestionStatusApproved:
		return target == SuggestionStatusExecuted
	default:
		return false
	}
}

// ParseSuggestionStatus converts raw input into a SuggestionStatus.
func ParseSuggestionStatus(value string) (SuggestionStatus, error) {
	for _, candidate := range validSuggestionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid suggestion status %q", value)
}
