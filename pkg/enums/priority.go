package enums

import "fmt"

// Priority grades how urgently a suggestion should be acted on.
type Priority string

const (
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
)

var validPriorities = []Priority{
	PriorityP1,
	PriorityP2,
}

// String implements fmt.Stringer.
func (p Priority) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Priority.
func (p Priority) IsValid() bool {
	for _, candidate := range validPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriority converts raw input into a Priority.
func ParsePriority(value string) (Priority, error) {
	for _, candidate := range validPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid priority %q", value)
}
