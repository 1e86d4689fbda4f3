package enums

import "fmt"

// AmountType tells whether a stored price amount already includes tax.
type AmountType string

const (
	AmountTypeNet   AmountType = "net"
	AmountTypeGross AmountType = "gross"
)

var validAmountTypes = []AmountType{
	AmountTypeNet,
	AmountTypeGross,
}

// String implements fmt.Stringer.
func (a AmountType) String() string {
	return string(a)
}

// IsValid reports whether the amount type is recognized.
func (a AmountType) IsValid() bool {
	for _, candidate := range validAmountTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAmountType converts a raw string into an AmountType.
func ParseAmountType(value string) (AmountType, error) {
	for _, candidate := range validAmountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid amount type %q", value)
}
