package models

import "time"

// Item is a catalogued lot. Quantity is the total number of units that can be
// won across all bids within one auction.
type Item struct {
	ID          uint      `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	Quantity    int       `gorm:"column:quantity;not null;default:1"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
