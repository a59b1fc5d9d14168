package bids

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gavelworks/auctiondesk/pkg/db/models"
)

// Repository provides persistence for winning bids and the queries behind
// the status grid.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Transaction runs fn with a repository bound to one transaction, rolling
// back on error or panic.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// FindByID loads an active bid.
func (r *Repository) FindByID(ctx context.Context, bidID uint) (*models.WinningBid, error) {
	var bid models.WinningBid
	if err := r.db.WithContext(ctx).First(&bid, "id = ?", bidID).Error; err != nil {
		return nil, err
	}
	return &bid, nil
}

// ListActiveForItem returns the active bids for one item within an auction,
// oldest first, locking them for update when the dialect supports it.
func (r *Repository) ListActiveForItem(ctx context.Context, auctionID, itemID uint, forUpdate bool) ([]models.WinningBid, error) {
	q := r.db.WithContext(ctx).
		Where("auction_id = ? AND item_id = ?", auctionID, itemID).
		Order("created_at, id")
	if forUpdate && r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var bids []models.WinningBid
	if err := q.Find(&bids).Error; err != nil {
		return nil, err
	}
	return bids, nil
}

// ListActiveForAuction returns every active bid in the auction, grouped in
// item order by the caller.
func (r *Repository) ListActiveForAuction(ctx context.Context, auctionID uint) ([]models.WinningBid, error) {
	var bids []models.WinningBid
	err := r.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("item_id, created_at, id").
		Find(&bids).Error
	if err != nil {
		return nil, err
	}
	return bids, nil
}

// Create inserts a new bid row.
func (r *Repository) Create(ctx context.Context, bid *models.WinningBid) error {
	return r.db.WithContext(ctx).Create(bid).Error
}

// Save persists all fields of an existing bid row.
func (r *Repository) Save(ctx context.Context, bid *models.WinningBid) error {
	return r.db.WithContext(ctx).Save(bid).Error
}

// Delete soft-deletes the bid. Deleting an absent bid is a no-op.
func (r *Repository) Delete(ctx context.Context, bidID uint) error {
	return r.db.WithContext(ctx).Delete(&models.WinningBid{}, "id = ?", bidID).Error
}

// ItemWithQuantity is an auction catalog row joined with its declared
// quantity, used by the status grid.
type ItemWithQuantity struct {
	ID          uint
	Name        string
	Description string
	Quantity    int
}

// ListAuctionCatalog returns every item linked to the auction.
func (r *Repository) ListAuctionCatalog(ctx context.Context, auctionID uint) ([]ItemWithQuantity, error) {
	var rows []ItemWithQuantity
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Select("items.id, items.name, items.description, items.quantity").
		Joins("JOIN auction_items ON auction_items.item_id = items.id").
		Where("auction_items.auction_id = ?", auctionID).
		Order("items.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindAuctionItem loads an item restricted to the auction's catalog.
func (r *Repository) FindAuctionItem(ctx context.Context, auctionID, itemID uint) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Joins("JOIN auction_items ON auction_items.item_id = items.id").
		Where("auction_items.auction_id = ? AND items.id = ?", auctionID, itemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindBidder loads a bidder row.
func (r *Repository) FindBidder(ctx context.Context, bidderID uint) (*models.Bidder, error) {
	var bidder models.Bidder
	if err := r.db.WithContext(ctx).First(&bidder, "id = ?", bidderID).Error; err != nil {
		return nil, err
	}
	return &bidder, nil
}

// BidderNames resolves display names for the given bidder ids.
func (r *Repository) BidderNames(ctx context.Context, ids []uint) (map[uint]string, error) {
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var bidders []models.Bidder
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&bidders).Error; err != nil {
		return nil, err
	}
	for _, b := range bidders {
		names[b.ID] = b.Name
	}
	return names, nil
}
