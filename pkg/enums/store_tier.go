package enums

import "fmt"

// StoreTier ranks a store's business importance.
type StoreTier string

const (
	StoreTierA StoreTier = "A"
	StoreTierB StoreTier = "B"
	StoreTierC StoreTier = "C"
)

var validStoreTiers = []StoreTier{
	StoreTierA,
	StoreTierB,
	StoreTierC,
}

// String implements fmt.Stringer.
func (t StoreTier) String() string {
	return string(t)
}

// IsValid reports whether the value is a known StoreTier.
func (t StoreTier) IsValid() bool {
	for _, candidate := range validStoreTiers {
		if candidate == t {
			return true
		}
	}
	return false
}

// Rank returns the tier's sort order, A before B before C; unknown tiers sort last.
func (t StoreTier) Rank() int {
	switch t {
	case StoreTierA:
		return 0
	case StoreTierB:
		return 1
	case StoreTierC:
		return 2
	default:
		return 3
	}
}

// ParseStoreTier converts raw input into a StoreTier.
func ParseStoreTier(value string) (StoreTier, error) {
	for _, candidate := range validStoreTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid store tier %q", value)
}
