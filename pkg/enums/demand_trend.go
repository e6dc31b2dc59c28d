package enums

import "fmt"

// DemandTrend describes the direction of a product's sales velocity at a store.
type DemandTrend string

const (
	DemandTrendAccelerating DemandTrend = "accelerating"
	DemandTrendFlat         DemandTrend = "flat"
	DemandTrendDecelerating DemandTrend = "decelerating"
)

var validDemandTrends = []DemandTrend{
	DemandTrendAccelerating,
	DemandTrendFlat,
	DemandTrendDecelerating,
}

// String implements fmt.Stringer.
func (d DemandTrend) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DemandTrend.
func (d DemandTrend) IsValid() bool {
	for _, candidate := range validDemandTrends {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsLow reports whether the trend qualifies a store as a lateral source.
func (d DemandTrend) IsLow() bool {
	return d == DemandTrendFlat || d == DemandTrendDecelerating
}

// ParseDemandTrend converts raw input into a DemandTrend.
func ParseDemandTrend(value string) (DemandTrend, error) {
	for _, candidate := range validDemandTrends {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid demand trend %q", value)
}
