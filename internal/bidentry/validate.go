package bidentry

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var priceRe = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// Error strings surfaced inline next to a field.
const (
	errItemNotNumeric    = "enter an item number"
	errItemNotInAuction  = "not found or not part of this auction"
	errBidderNotNumeric  = "enter a bidder number"
	errBidderNotFound    = "bidder not found"
	errPriceFormat       = "enter a price like 25 or 25.50"
	errQuantityFormat    = "enter a whole number of 1 or more"
	errQuantityAvailable = "only %d available"
)

// parseID reads a strictly numeric entity id from raw text.
func parseID(text string) (uint, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(trimmed, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// validPriceText accepts empty or digits with at most two decimals.
func validPriceText(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	return priceRe.MatchString(trimmed)
}

// parsePrice converts validated price text; empty yields zero.
func parsePrice(text string) decimal.Decimal {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseQuantity reads quantity text; empty defaults to 1.
func parseQuantity(text string) (int, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 1, true
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
