package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/gavelworks/auctiondesk/pkg/db/models"
)

// Repository runs the typeahead queries against the catalog tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindAuctionItemByID loads an item by exact id, restricted to the auction's
// catalog.
func (r *Repository) FindAuctionItemByID(ctx context.Context, auctionID, itemID uint) (*models.Item, error) {
	var item models.Item
	err := r.auctionItems(ctx, auctionID).
		Where("items.id = ?", itemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SearchAuctionItems returns items in the auction whose name or description
// contains the term, excluding the given ids.
func (r *Repository) SearchAuctionItems(ctx context.Context, auctionID uint, term string, excludeIDs []uint, limit int) ([]models.Item, error) {
	pattern := "%" + strings.ToLower(term) + "%"
	q := r.auctionItems(ctx, auctionID).
		Where("LOWER(items.name) LIKE ? OR LOWER(items.description) LIKE ?", pattern, pattern)
	if len(excludeIDs) > 0 {
		q = q.Where("items.id NOT IN ?", excludeIDs)
	}

	var items []models.Item
	if err := q.Order("items.name, items.id").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindBidderByID loads a bidder by exact id.
func (r *Repository) FindBidderByID(ctx context.Context, bidderID uint) (*models.Bidder, error) {
	var bidder models.Bidder
	if err := r.db.WithContext(ctx).First(&bidder, "id = ?", bidderID).Error; err != nil {
		return nil, err
	}
	return &bidder, nil
}

// SearchBidders returns bidders whose name contains the term, excluding the
// given ids. Bidders are global, never auction-scoped.
func (r *Repository) SearchBidders(ctx context.Context, term string, excludeIDs []uint, limit int) ([]models.Bidder, error) {
	pattern := "%" + strings.ToLower(term) + "%"
	q := r.db.WithContext(ctx).
		Model(&models.Bidder{}).
		Where("LOWER(name) LIKE ?", pattern)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}

	var bidders []models.Bidder
	if err := q.Order("name, id").Limit(limit).Find(&bidders).Error; err != nil {
		return nil, err
	}
	return bidders, nil
}

// AuctionExists reports whether the auction id is known.
func (r *Repository) AuctionExists(ctx context.Context, auctionID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Auction{}).
		Where("id = ?", auctionID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) auctionItems(ctx context.Context, auctionID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Item{}).
		Joins("JOIN auction_items ON auction_items.item_id = items.id").
		Where("auction_items.auction_id = ?", auctionID)
}
