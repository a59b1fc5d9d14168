package models

import (
	"time"

	"github.com/gavelworks/auctiondesk/pkg/enums"
)

// Auction is one silent-auction event.
type Auction struct {
	ID          uint                `gorm:"column:id;primaryKey"`
	Description string              `gorm:"column:description;not null"`
	Date        time.Time           `gorm:"column:date;not null"`
	Status      enums.AuctionStatus `gorm:"column:status;not null;default:planned"`
	Items       []Item              `gorm:"many2many:auction_items"`
	Bids        []WinningBid        `gorm:"foreignKey:AuctionID"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// AuctionItem links an item into an auction's catalog.
type AuctionItem struct {
	AuctionID uint      `gorm:"column:auction_id;primaryKey"`
	ItemID    uint      `gorm:"column:item_id;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
