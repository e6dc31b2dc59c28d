package enums

import "fmt"

// RunStatus tracks the lifecycle of an allocation run.
type RunStatus string

const (
	RunStatusCreated   RunStatus = "created"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

var validRunStatuses = []RunStatus{
	RunStatusCreated,
	RunStatusCompleted,
	RunStatusFailed,
}

// String implements fmt.Stringer.
func (r RunStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RunStatus.
func (r RunStatus) IsValid() bool {
	for _, candidate := range validRunStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the run can no longer change state.
func (r RunStatus) IsTerminal() bool {
	return r == RunStatusCompleted || r == RunStatusFailed
}

// ParseRunStatus converts raw input into a RunStatus.
func ParseRunStatus(value string) (RunStatus, error) {
	for _, candidate := range validRunStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid run status %q", value)
}
