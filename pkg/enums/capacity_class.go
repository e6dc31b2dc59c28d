package enums

import "fmt"

// CapacityClass buckets a store's utilization for planner eligibility.
type CapacityClass string

const (
	CapacityClassOverloaded CapacityClass = "overloaded"
	CapacityClassNominal    CapacityClass = "nominal"
	CapacityClassHasSpace   CapacityClass = "has_space"
)

var validCapacityClasses = []CapacityClass{
	CapacityClassOverloaded,
	CapacityClassNominal,
	CapacityClassHasSpace,
}

// String implements fmt.Stringer.
func (c CapacityClass) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CapacityClass.
func (c CapacityClass) IsValid() bool {
	for _, candidate := range validCapacityClasses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCapacityClass converts raw input into a CapacityClass.
func ParseCapacityClass(value string) (CapacityClass, error) {
	for _, candidate := range validCapacityClasses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid capacity class %q", value)
}
