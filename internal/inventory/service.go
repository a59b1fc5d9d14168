package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gavelworks/auctiondesk/internal/bids"
	pkgerrors "github.com/gavelworks/auctiondesk/pkg/errors"
)

// Snapshot is the inventory position of one item within an auction, plus any
// existing winning bids the entry form needs for edit mode.
type Snapshot struct {
	ItemID            uint              `json:"item_id"`
	AuctionID         uint              `json:"auction_id"`
	TotalQuantity     int               `json:"total_quantity"`
	AllocatedQuantity int               `json:"allocated_quantity"`
	AvailableQuantity int               `json:"available_quantity"`
	CanAddBid         bool              `json:"can_add_bid"`
	ExistingBids      []bids.BidSummary `json:"existing_bids"`
}

// Service answers "how much of this item is left, and who already won it".
type Service interface {
	Check(ctx context.Context, auctionID, itemID uint) (*Snapshot, error)
}

type service struct {
	repo *bids.Repository
}

// NewService constructs an inventory service over the bids repository.
func NewService(repo *bids.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bids repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Check(ctx context.Context, auctionID, itemID uint) (*Snapshot, error) {
	if auctionID == 0 || itemID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "auction_id and item_id are required")
	}

	item, err := s.repo.FindAuctionItem(ctx, auctionID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotInAuction,
				fmt.Sprintf("item %d not found or not part of this auction", itemID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading item")
	}

	active, err := s.repo.ListActiveForItem(ctx, auctionID, itemID, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading existing bids")
	}

	var bidderIDs []uint
	for _, b := range active {
		if b.BidderID != nil {
			bidderIDs = append(bidderIDs, *b.BidderID)
		}
	}
	names, err := s.repo.BidderNames(ctx, bidderIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving bidder names")
	}

	snap := &Snapshot{
		ItemID:        itemID,
		AuctionID:     auctionID,
		TotalQuantity: item.Quantity,
		ExistingBids:  make([]bids.BidSummary, 0, len(active)),
	}
	for _, b := range active {
		name := ""
		if b.BidderID != nil {
			name = names[*b.BidderID]
		}
		snap.ExistingBids = append(snap.ExistingBids, bids.NewBidSummary(b, name))
		if b.HasWinner() {
			snap.AllocatedQuantity += b.QuantityWon
		}
	}
	snap.AvailableQuantity = snap.TotalQuantity - snap.AllocatedQuantity
	snap.CanAddBid = snap.AvailableQuantity > 0
	return snap, nil
}
