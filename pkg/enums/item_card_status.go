package enums

import "fmt"

// ItemCardStatus is the derived display state of one item card on the
// status grid.
type ItemCardStatus string

const (
	ItemCardPending   ItemCardStatus = "pending"
	ItemCardCompleted ItemCardStatus = "completed"
	ItemCardMultiple  ItemCardStatus = "multiple"
	ItemCardNoBid     ItemCardStatus = "no_bid"
)

var validItemCardStatuses = []ItemCardStatus{
	ItemCardPending,
	ItemCardCompleted,
	ItemCardMultiple,
	ItemCardNoBid,
}

// String implements fmt.Stringer.
func (s ItemCardStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ItemCardStatus.
func (s ItemCardStatus) IsValid() bool {
	for _, candidate := range validItemCardStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseItemCardStatus converts raw input into an ItemCardStatus.
func ParseItemCardStatus(value string) (ItemCardStatus, error) {
	for _, candidate := range validItemCardStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item card status %q", value)
}
