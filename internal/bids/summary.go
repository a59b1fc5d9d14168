package bids

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/gavelworks/auctiondesk/pkg/db/models"
	"github.com/gavelworks/auctiondesk/pkg/enums"
	pkgerrors "github.com/gavelworks/auctiondesk/pkg/errors"
)

// BidSummary is the wire shape of one winning bid. BidderID carries the
// no-bid sentinel (0) when the row is an explicit marker.
type BidSummary struct {
	BidID        uint            `json:"bid_id"`
	BidderID     uint            `json:"bidder_id"`
	BidderName   string          `json:"bidder_name"`
	WinningPrice decimal.Decimal `json:"winning_price"`
	QuantityWon  int             `json:"quantity_won"`
	NoBid        bool            `json:"no_bid"`
}

// ItemStatus is one card on the status grid.
type ItemStatus struct {
	ItemID            uint                 `json:"item_id"`
	Name              string               `json:"name"`
	Description       string               `json:"description"`
	TotalQuantity     int                  `json:"total_quantity"`
	AllocatedQuantity int                  `json:"allocated_quantity"`
	AvailableQuantity int                  `json:"available_quantity"`
	Status            enums.ItemCardStatus `json:"status"`
	Bids              []BidSummary         `json:"bids"`
	WinnerCount       int                  `json:"winner_count"`
	AveragePrice      decimal.Decimal      `json:"average_price"`
}

// AuctionSummary is the derived accounting recomputed after every mutation.
type AuctionSummary struct {
	RunningTotal    decimal.Decimal `json:"running_total"`
	ProcessedCount  int             `json:"processed_count"`
	TotalItems      int             `json:"total_items"`
	PercentComplete float64         `json:"percent_complete"`
}

// AuctionStatus is the polling feed payload.
type AuctionStatus struct {
	AuctionID uint           `json:"auction_id"`
	Items     []ItemStatus   `json:"items"`
	Summary   AuctionSummary `json:"summary"`
}

func (s *service) ListAuctionItems(ctx context.Context, auctionID uint) (*AuctionStatus, error) {
	if auctionID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "auction_id is required")
	}

	catalog, err := s.repo.ListAuctionCatalog(ctx, auctionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading auction catalog")
	}
	allBids, err := s.repo.ListActiveForAuction(ctx, auctionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading auction bids")
	}

	var bidderIDs []uint
	byItem := make(map[uint][]models.WinningBid)
	for _, b := range allBids {
		byItem[b.ItemID] = append(byItem[b.ItemID], b)
		if b.BidderID != nil {
			bidderIDs = append(bidderIDs, *b.BidderID)
		}
	}
	names, err := s.repo.BidderNames(ctx, bidderIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving bidder names")
	}

	status := &AuctionStatus{
		AuctionID: auctionID,
		Items:     make([]ItemStatus, 0, len(catalog)),
	}
	for _, item := range catalog {
		status.Items = append(status.Items, buildItemStatus(item, byItem[item.ID], names))
	}
	status.Summary = Summarize(status.Items)
	return status, nil
}

func buildItemStatus(item ItemWithQuantity, itemBids []models.WinningBid, names map[uint]string) ItemStatus {
	st := ItemStatus{
		ItemID:        item.ID,
		Name:          item.Name,
		Description:   item.Description,
		TotalQuantity: item.Quantity,
		Status:        enums.ItemCardPending,
		Bids:          make([]BidSummary, 0, len(itemBids)),
		AveragePrice:  decimal.Zero,
	}

	priceSum := decimal.Zero
	for _, b := range itemBids {
		name := ""
		if b.BidderID != nil {
			name = names[*b.BidderID]
		}
		st.Bids = append(st.Bids, summarize(b, name))
		if b.HasWinner() {
			st.WinnerCount++
			st.AllocatedQuantity += b.QuantityWon
			priceSum = priceSum.Add(b.Price)
		}
	}
	st.AvailableQuantity = st.TotalQuantity - st.AllocatedQuantity

	switch {
	case st.WinnerCount > 1:
		st.Status = enums.ItemCardMultiple
		st.AveragePrice = priceSum.DivRound(decimal.NewFromInt(int64(st.WinnerCount)), 2)
	case st.WinnerCount == 1:
		st.Status = enums.ItemCardCompleted
		st.AveragePrice = priceSum
	case len(itemBids) > 0:
		st.Status = enums.ItemCardNoBid
	}
	return st
}

// Summarize derives the auction-level accounting from the item cards:
// running total over real winners only, processed count including no-bid
// markers.
func Summarize(items []ItemStatus) AuctionSummary {
	summary := AuctionSummary{
		RunningTotal: decimal.Zero,
		TotalItems:   len(items),
	}
	for _, item := range items {
		if item.Status != enums.ItemCardPending {
			summary.ProcessedCount++
		}
		for _, b := range item.Bids {
			if b.NoBid || b.BidderID == models.NoBidSentinel {
				continue
			}
			summary.RunningTotal = summary.RunningTotal.Add(
				b.WinningPrice.Mul(decimal.NewFromInt(int64(b.QuantityWon))))
		}
	}
	if summary.TotalItems > 0 {
		summary.PercentComplete = float64(summary.ProcessedCount) / float64(summary.TotalItems) * 100
	}
	return summary
}

// NewBidSummary maps a stored row to its wire shape.
func NewBidSummary(b models.WinningBid, bidderName string) BidSummary {
	return summarize(b, bidderName)
}

func summarize(b models.WinningBid, bidderName string) BidSummary {
	return BidSummary{
		BidID:        b.ID,
		BidderID:     b.SentinelBidderID(),
		BidderName:   bidderName,
		WinningPrice: b.Price,
		QuantityWon:  b.QuantityWon,
		NoBid:        b.NoBid,
	}
}
