package enums

import "fmt"

// LookupKind selects which entity class a typeahead search targets.
type LookupKind string

const (
	LookupKindItem   LookupKind = "item"
	LookupKindBidder LookupKind = "bidder"
)

// String implements fmt.Stringer.
func (k LookupKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known LookupKind.
func (k LookupKind) IsValid() bool {
	return k == LookupKindItem || k == LookupKindBidder
}

// ParseLookupKind converts raw input into a LookupKind.
func ParseLookupKind(value string) (LookupKind, error) {
	switch LookupKind(value) {
	case LookupKindItem:
		return LookupKindItem, nil
	case LookupKindBidder:
		return LookupKindBidder, nil
	}
	return "", fmt.Errorf("invalid lookup type %q", value)
}
