package enums

import "fmt"

// AuctionStatus represents the lifecycle of an auction event.
type AuctionStatus string

const (
	AuctionStatusPlanned AuctionStatus = "planned"
	AuctionStatusActive  AuctionStatus = "active"
	AuctionStatusSettled AuctionStatus = "settled"
)

var validAuctionStatuses = []AuctionStatus{
	AuctionStatusPlanned,
	AuctionStatusActive,
	AuctionStatusSettled,
}

// String implements fmt.Stringer.
func (s AuctionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AuctionStatus.
func (s AuctionStatus) IsValid() bool {
	for _, candidate := range validAuctionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAuctionStatus converts raw input into an AuctionStatus.
func ParseAuctionStatus(value string) (AuctionStatus, error) {
	for _, candidate := range validAuctionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid auction status %q", value)
}
