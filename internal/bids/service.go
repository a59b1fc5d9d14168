package bids

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gavelworks/auctiondesk/pkg/db"
	"github.com/gavelworks/auctiondesk/pkg/db/models"
	pkgerrors "github.com/gavelworks/auctiondesk/pkg/errors"
)

// SaveInput is the payload for recording a winning bid.
//
// A zero BidderID is only legal together with NoBid, which records the
// explicit "no bid" marker instead of a winner. AllowSplit permits an
// additional winner row on an item that already has one; without it a save
// over an existing bid replaces that bid (upsert).
type SaveInput struct {
	AuctionID   uint
	ItemID      uint
	BidderID    uint
	Price       decimal.Decimal
	QuantityWon int
	NoBid       bool
	AllowSplit  bool
}

// UpdateInput carries optional changes to an existing bid, keyed by bid id.
type UpdateInput struct {
	BidderID    *uint
	Price       *decimal.Decimal
	QuantityWon *int
}

// Service exposes the bid mutation operations and the status-grid feed.
type Service interface {
	Save(ctx context.Context, input SaveInput) (*BidSummary, error)
	Update(ctx context.Context, bidID uint, input UpdateInput) (*BidSummary, error)
	// Delete removes a bid and frees its inventory. Deleting a bid that does
	// not exist succeeds.
	Delete(ctx context.Context, bidID uint) error
	// ListAuctionItems is the polling feed: every catalog item with its
	// active bids, derived card status, and auction-level accounting.
	ListAuctionItems(ctx context.Context, auctionID uint) (*AuctionStatus, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a bid mutation service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bids repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Save(ctx context.Context, input SaveInput) (*BidSummary, error) {
	if input.NoBid {
		return s.saveNoBid(ctx, input)
	}
	if err := validateSave(input); err != nil {
		return nil, err
	}

	item, err := s.loadAuctionItem(ctx, input.AuctionID, input.ItemID)
	if err != nil {
		return nil, err
	}
	bidder, err := s.loadBidder(ctx, input.BidderID)
	if err != nil {
		return nil, err
	}

	var saved models.WinningBid
	err = s.repo.Transaction(ctx, func(tx *Repository) error {
		existing, err := tx.ListActiveForItem(ctx, input.AuctionID, input.ItemID, true)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading existing bids")
		}

		// A real bid displaces the no-bid marker.
		real := existing[:0:len(existing)]
		for _, b := range existing {
			if b.NoBid {
				if err := tx.Delete(ctx, b.ID); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing no-bid marker")
				}
				continue
			}
			real = append(real, b)
		}

		target := pickTarget(real, input)
		if target == nil {
			target = &models.WinningBid{
				AuctionID: input.AuctionID,
				ItemID:    input.ItemID,
			}
		}
		bidderID := input.BidderID
		target.BidderID = &bidderID
		target.Price = input.Price
		target.QuantityWon = input.QuantityWon
		target.NoBid = false

		if err := checkQuantity(item.Quantity, real, target); err != nil {
			return err
		}

		if target.ID == 0 {
			err = tx.Create(ctx, target)
		} else {
			err = tx.Save(ctx, target)
		}
		if err != nil {
			return persistError(err, "persisting bid")
		}
		saved = *target
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := summarize(saved, bidder.Name)
	return &summary, nil
}

// saveNoBid records the explicit "item processed, no winner" marker. The
// marker never coexists with real bids and re-marking is idempotent.
func (s *service) saveNoBid(ctx context.Context, input SaveInput) (*BidSummary, error) {
	if _, err := s.loadAuctionItem(ctx, input.AuctionID, input.ItemID); err != nil {
		return nil, err
	}

	var saved models.WinningBid
	err := s.repo.Transaction(ctx, func(tx *Repository) error {
		existing, err := tx.ListActiveForItem(ctx, input.AuctionID, input.ItemID, true)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading existing bids")
		}
		for _, b := range existing {
			if b.NoBid {
				saved = b
				return nil
			}
		}
		if len(existing) > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				"item already has winning bids; delete them before marking no bid")
		}

		marker := models.WinningBid{
			AuctionID: input.AuctionID,
			ItemID:    input.ItemID,
			Price:     decimal.Zero,
			NoBid:     true,
		}
		if err := tx.Create(ctx, &marker); err != nil {
			return persistError(err, "persisting no-bid marker")
		}
		saved = marker
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := summarize(saved, "")
	return &summary, nil
}

func (s *service) Update(ctx context.Context, bidID uint, input UpdateInput) (*BidSummary, error) {
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
	}
	if input.QuantityWon != nil && *input.QuantityWon < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity_won must be a positive integer")
	}

	var (
		saved      models.WinningBid
		bidderName string
	)
	err := s.repo.Transaction(ctx, func(tx *Repository) error {
		bid, err := tx.FindByID(ctx, bidID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("bid %d not found", bidID))
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading bid")
		}
		if bid.NoBid {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "a no-bid marker cannot be edited; delete it instead")
		}

		if input.BidderID != nil {
			bidder, err := tx.FindBidder(ctx, *input.BidderID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("bidder %d not found", *input.BidderID))
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading bidder")
			}
			bid.BidderID = &bidder.ID
			bidderName = bidder.Name
		}
		if input.Price != nil {
			bid.Price = *input.Price
		}
		if input.QuantityWon != nil {
			bid.QuantityWon = *input.QuantityWon
		}

		// Re-check the inventory invariant against sibling bids; an update
		// can grow quantity_won just as easily as a save.
		item, err := tx.FindAuctionItem(ctx, bid.AuctionID, bid.ItemID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading item")
		}
		siblings, err := tx.ListActiveForItem(ctx, bid.AuctionID, bid.ItemID, true)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading sibling bids")
		}
		others := siblings[:0:len(siblings)]
		for _, b := range siblings {
			if b.ID != bid.ID {
				others = append(others, b)
			}
		}
		if err := checkQuantity(item.Quantity, others, bid); err != nil {
			return err
		}

		if err := tx.Save(ctx, bid); err != nil {
			return persistError(err, "persisting bid")
		}
		saved = *bid
		return nil
	})
	if err != nil {
		return nil, err
	}

	if bidderName == "" && saved.BidderID != nil {
		if bidder, err := s.repo.FindBidder(ctx, *saved.BidderID); err == nil {
			bidderName = bidder.Name
		}
	}
	summary := summarize(saved, bidderName)
	return &summary, nil
}

func (s *service) Delete(ctx context.Context, bidID uint) error {
	if err := s.repo.Delete(ctx, bidID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting bid")
	}
	return nil
}

func (s *service) loadAuctionItem(ctx context.Context, auctionID, itemID uint) (*models.Item, error) {
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
	return item, nil
}

func (s *service) loadBidder(ctx context.Context, bidderID uint) (*models.Bidder, error) {
	bidder, err := s.repo.FindBidder(ctx, bidderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("bidder %d not found", bidderID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading bidder")
	}
	return bidder, nil
}

// persistError translates a winning_bids write failure. A unique violation
// means a concurrent save landed the same (auction, item, bidder) row first;
// the caller should retry off the refreshed state.
func persistError(err error, msg string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err,
			"another bid for this bidder and item was saved concurrently")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}

// pickTarget selects which row a save writes to: the same bidder's existing
// bid when present, otherwise the oldest existing bid unless the caller asked
// for a split.
func pickTarget(existing []models.WinningBid, input SaveInput) *models.WinningBid {
	for i := range existing {
		if existing[i].BidderID != nil && *existing[i].BidderID == input.BidderID {
			return &existing[i]
		}
	}
	if len(existing) > 0 && !input.AllowSplit {
		return &existing[0]
	}
	return nil
}

// checkQuantity enforces Σ quantity_won ≤ item quantity over the bids that
// will be active after the mutation.
func checkQuantity(itemQuantity int, others []models.WinningBid, target *models.WinningBid) error {
	total := target.QuantityWon
	for _, b := range others {
		if target.ID != 0 && b.ID == target.ID {
			continue
		}
		total += b.QuantityWon
	}
	if total > itemQuantity {
		available := itemQuantity - (total - target.QuantityWon)
		if available < 0 {
			available = 0
		}
		return pkgerrors.New(pkgerrors.CodeInventoryExhausted,
			fmt.Sprintf("quantity %d exceeds available inventory", target.QuantityWon)).
			WithDetails(map[string]any{"available_quantity": available})
	}
	return nil
}

func validateSave(input SaveInput) error {
	if input.BidderID == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "bidder_id is required unless no_bid is set")
	}
	if err := validatePrice(input.Price); err != nil {
		return err
	}
	if input.Price.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "winning_price must be greater than zero")
	}
	if input.QuantityWon < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity_won must be a positive integer")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "winning_price must not be negative")
	}
	if price.Exponent() < -2 {
		return pkgerrors.New(pkgerrors.CodeValidation, "winning_price allows at most two decimal places")
	}
	return nil
}
