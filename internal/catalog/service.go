package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/gavelworks/auctiondesk/pkg/db/models"
	pkgerrors "github.com/gavelworks/auctiondesk/pkg/errors"
)

// DefaultLimit caps lookup responses when no limit is configured.
const DefaultLimit = 10

// ItemResult is one ranked item candidate.
type ItemResult struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

// BidderResult is one ranked bidder candidate.
type BidderResult struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Service exposes the typeahead lookups behind the bid-entry form.
type Service interface {
	// SearchItems ranks item candidates within one auction's catalog: an
	// exact-id match for a numeric term sorts first, then substring matches
	// on name/description, capped at the configured limit.
	SearchItems(ctx context.Context, auctionID uint, term string) ([]ItemResult, error)
	// SearchBidders ranks bidder candidates globally with the same
	// exact-id-first contract.
	SearchBidders(ctx context.Context, term string) ([]BidderResult, error)
	// ResolveAuctionItem confirms a numeric id belongs to the auction's
	// catalog; ids that exist globally but are not linked to the auction are
	// rejected with the not-in-auction code.
	ResolveAuctionItem(ctx context.Context, auctionID, itemID uint) (*ItemResult, error)
	// ResolveBidder confirms a numeric id names an existing bidder.
	ResolveBidder(ctx context.Context, bidderID uint) (*BidderResult, error)
}

type service struct {
	repo  *Repository
	limit int
}

// NewService constructs a lookup service with the given result cap.
func NewService(repo *Repository, limit int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &service{repo: repo, limit: limit}, nil
}

func (s *service) SearchItems(ctx context.Context, auctionID uint, term string) ([]ItemResult, error) {
	if auctionID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "auction_id is required for item lookups")
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search term is required")
	}

	results := make([]ItemResult, 0, s.limit)
	var exclude []uint

	if id, ok := numericTerm(term); ok {
		item, err := s.repo.FindAuctionItemByID(ctx, auctionID, id)
		switch {
		case err == nil:
			results = append(results, itemResult(*item))
			exclude = append(exclude, item.ID)
		case errors.Is(err, gorm.ErrRecordNotFound):
			// fall through to substring matching
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "item lookup failed")
		}
	}

	items, err := s.repo.SearchAuctionItems(ctx, auctionID, term, exclude, s.limit-len(results))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "item lookup failed")
	}
	for _, item := range items {
		results = append(results, itemResult(item))
	}
	return results, nil
}

func (s *service) SearchBidders(ctx context.Context, term string) ([]BidderResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search term is required")
	}

	results := make([]BidderResult, 0, s.limit)
	var exclude []uint

	if id, ok := numericTerm(term); ok {
		bidder, err := s.repo.FindBidderByID(ctx, id)
		switch {
		case err == nil:
			results = append(results, bidderResult(*bidder))
			exclude = append(exclude, bidder.ID)
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bidder lookup failed")
		}
	}

	bidders, err := s.repo.SearchBidders(ctx, term, exclude, s.limit-len(results))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bidder lookup failed")
	}
	for _, bidder := range bidders {
		results = append(results, bidderResult(bidder))
	}
	return results, nil
}

func (s *service) ResolveAuctionItem(ctx context.Context, auctionID, itemID uint) (*ItemResult, error) {
	if auctionID == 0 || itemID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "auction_id and item_id are required")
	}
	item, err := s.repo.FindAuctionItemByID(ctx, auctionID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotInAuction,
				fmt.Sprintf("item %d not found or not part of this auction", itemID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "item resolution failed")
	}
	result := itemResult(*item)
	return &result, nil
}

func (s *service) ResolveBidder(ctx context.Context, bidderID uint) (*BidderResult, error) {
	if bidderID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bidder_id is required")
	}
	bidder, err := s.repo.FindBidderByID(ctx, bidderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("bidder %d not found", bidderID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bidder resolution failed")
	}
	result := bidderResult(*bidder)
	return &result, nil
}

func numericTerm(term string) (uint, bool) {
	id, err := strconv.ParseUint(term, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func itemResult(m models.Item) ItemResult {
	return ItemResult{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Quantity:    m.Quantity,
	}
}

func bidderResult(m models.Bidder) BidderResult {
	return BidderResult{
		ID:    m.ID,
		Name:  m.Name,
		Phone: m.Phone,
		Email: m.Email,
	}
}
