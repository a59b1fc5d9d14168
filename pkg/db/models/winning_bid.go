package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NoBidSentinel is the bidder id the API exposes for an explicit "no bid"
// marker. Stored as a NULL bidder_id; distinct from the absence of any row.
const NoBidSentinel uint = 0

// WinningBid records one bidder winning some quantity of an item within an
// auction. A row with NoBid set and a nil BidderID marks an item as explicitly
// processed with no winner.
//
// The schema enforces at most one active row per (auction, item, bidder); the
// bids service additionally guards that quantities summed over an item's
// active rows never exceed the item's declared quantity.
type WinningBid struct {
	ID          uint            `gorm:"column:id;primaryKey"`
	AuctionID   uint            `gorm:"column:auction_id;not null;index:ix_winning_bids_auction_item"`
	ItemID      uint            `gorm:"column:item_id;not null;index:ix_winning_bids_auction_item"`
	BidderID    *uint           `gorm:"column:bidder_id"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	QuantityWon int             `gorm:"column:quantity_won;not null;default:0"`
	NoBid       bool            `gorm:"column:no_bid;not null;default:false"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt   gorm.DeletedAt  `gorm:"column:deleted_at;index"`
}

// SentinelBidderID maps the stored bidder reference to the wire value.
func (b WinningBid) SentinelBidderID() uint {
	if b.BidderID == nil {
		return NoBidSentinel
	}
	return *b.BidderID
}

// HasWinner reports whether the row names a real bidder rather than the
// no-bid marker.
func (b WinningBid) HasWinner() bool {
	return b.BidderID != nil && !b.NoBid
}

// Amount is the bid's contribution to an auction's running total.
func (b WinningBid) Amount() decimal.Decimal {
	if !b.HasWinner() {
		return decimal.Zero
	}
	return b.Price.Mul(decimal.NewFromInt(int64(b.QuantityWon)))
}
