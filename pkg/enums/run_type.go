package enums

import "fmt"

// RunType selects which planners an allocation run executes.
type RunType string

const (
	RunTypePush    RunType = "push"
	RunTypeLateral RunType = "lateral"
	RunTypeBoth    RunType = "both"
)

var validRunTypes = []RunType{
	RunTypePush,
	RunTypeLateral,
	RunTypeBoth,
}

// String implements fmt.Stringer.
func (r RunType) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RunType.
func (r RunType) IsValid() bool {
	for _, candidate := range validRunTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// IncludesPush reports whether the run executes the push planner.
func (r RunType) IncludesPush() bool {
	return r == RunTypePush || r == RunTypeBoth
}

// IncludesLateral reports whether the run executes the lateral planner.
func (r RunType) IncludesLateral() bool {
	return r == RunTypeLateral || r == RunTypeBoth
}

// ParseRunType converts raw input into a RunType.
func ParseRunType(value string) (RunType, error) {
	for _, candidate := range validRunTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid run type %q", value)
}
