package enums

import "fmt"

// TransferType distinguishes warehouse pushes from store-to-store laterals.
type TransferType string

const (
	TransferTypePush    TransferType = "push"
	TransferTypeLateral TransferType = "lateral"
)

var validTransferTypes = []TransferType{
	TransferTypePush,
	TransferTypeLateral,
}

// String implements fmt.Stringer.
func (t TransferType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransferType.
func (t TransferType) IsValid() bool {
	for _, candidate := range validTransferTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransferType converts raw input into a TransferType.
func ParseTransferType(value string) (TransferType, error) {
	for _, candidate := range validTransferTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer type %q", value)
}
