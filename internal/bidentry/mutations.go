package bidentry

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/gavelworks/auctiondesk/internal/bids"
	"github.com/gavelworks/auctiondesk/pkg/db/models"
	"github.com/gavelworks/auctiondesk/pkg/enums"
	pkgerrors "github.com/gavelworks/auctiondesk/pkg/errors"
)

// save validates the form and issues the create-or-update mutation. Called
// with the lock held.
func (c *Controller) save() {
	if c.mutationInFlight {
		return
	}
	if c.mode == ModeEditing {
		c.saveUpdate()
		return
	}
	c.saveCreate()
}

func (c *Controller) saveCreate() {
	item, ok := c.item.selected()
	if !ok {
		c.failField(FieldItem, errItemNotNumeric)
		return
	}
	if c.inv != nil && !c.inv.CanAddBid {
		c.setNotice(NoticeError, "item is fully allocated, edit an existing bid instead", true)
		return
	}

	bidderID, ok := c.bidderIDForSave()
	if !ok {
		c.failField(FieldBidder, errBidderNotNumeric)
		return
	}
	if !validPriceText(c.price.text) {
		c.failField(FieldPrice, errPriceFormat)
		return
	}
	price := parsePrice(c.price.text)
	if !price.IsPositive() {
		c.failField(FieldPrice, errPriceFormat)
		return
	}
	qty, ok := parseQuantity(c.qty.text)
	if !ok {
		c.failField(FieldQuantity, errQuantityFormat)
		return
	}

	req := SaveBidRequest{
		AuctionID:    c.auctionID,
		ItemID:       item.ID,
		BidderID:     bidderID,
		WinningPrice: price,
		QuantityWon:  qty,
	}
	c.beginMutation(func(ctx context.Context) (*bids.BidSummary, uint, error) {
		summary, err := c.api.SaveBid(ctx, req)
		return summary, req.ItemID, err
	}, "bid saved")
}

func (c *Controller) saveUpdate() {
	bidID := c.editingBidID
	itemID := uint(0)
	if item, ok := c.item.selected(); ok {
		itemID = item.ID
	}

	req := UpdateBidRequest{}
	if bidderID, ok := c.bidderIDForSave(); ok && bidderID != 0 {
		id := bidderID
		req.BidderID = &id
	}
	if !validPriceText(c.price.text) {
		c.failField(FieldPrice, errPriceFormat)
		return
	}
	if price := parsePrice(c.price.text); price.IsPositive() {
		p := price
		req.WinningPrice = &p
	}
	if qty, ok := parseQuantity(c.qty.text); ok {
		q := qty
		req.QuantityWon = &q
	} else {
		c.failField(FieldQuantity, errQuantityFormat)
		return
	}

	c.beginMutation(func(ctx context.Context) (*bids.BidSummary, uint, error) {
		summary, err := c.api.UpdateBid(ctx, bidID, req)
		return summary, itemID, err
	}, "bid updated")
}

// bidderIDForSave resolves the bidder either from a confirmed dropdown
// selection or from parseable numeric text.
func (c *Controller) bidderIDForSave() (uint, bool) {
	if cand, ok := c.bidder.selected(); ok {
		return cand.ID, true
	}
	return parseID(c.bidder.text)
}

// markNoBid records the explicit no-winner marker for the selected item. No
// bidder or price is required.
func (c *Controller) markNoBid() {
	if c.mutationInFlight {
		return
	}
	item, ok := c.item.selected()
	if !ok {
		c.failField(FieldItem, errItemNotNumeric)
		return
	}

	req := SaveBidRequest{
		AuctionID: c.auctionID,
		ItemID:    item.ID,
		BidderID:  models.NoBidSentinel,
		NoBid:     true,
	}
	c.beginMutation(func(ctx context.Context) (*bids.BidSummary, uint, error) {
		summary, err := c.api.SaveBid(ctx, req)
		return summary, req.ItemID, err
	}, "item marked no bid")
}

// requestDelete arms the two-step delete confirmation.
func (c *Controller) requestDelete() {
	if c.mode != ModeEditing || c.editingBidID == 0 {
		return
	}
	c.confirmingDelete = true
}

func (c *Controller) confirmDelete() {
	if !c.confirmingDelete || c.mutationInFlight {
		return
	}
	c.confirmingDelete = false
	bidID := c.editingBidID
	itemID := uint(0)
	if item, ok := c.item.selected(); ok {
		itemID = item.ID
	}

	c.mutationInFlight = true
	ctx := c.ctx
	go func() {
		err := c.api.DeleteBid(ctx, bidID)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.mutationInFlight = false
		c.lastMutation = c.clk.Now()

		if err != nil {
			c.setNotice(NoticeError, mutationMessage(err), true)
			return
		}
		c.removeBidLocally(itemID, bidID)
		c.clearForm()
		c.setNotice(NoticeSuccess, "bid deleted", false)
		go c.refreshGrid()
	}()
}

// beginMutation runs a save-shaped mutation on a background goroutine and
// applies the shared completion handling: accounting, recent entries, form
// reset, notices, and the authoritative grid refresh.
func (c *Controller) beginMutation(run func(ctx context.Context) (*bids.BidSummary, uint, error), successText string) {
	c.mutationInFlight = true
	ctx := c.ctx

	go func() {
		summary, itemID, err := run(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.mutationInFlight = false
		c.lastMutation = c.clk.Now()

		if err != nil {
			// The form stays intact so the operator can correct and retry.
			c.setNotice(NoticeError, mutationMessage(err), true)
			return
		}

		c.applyBidLocally(itemID, *summary)
		c.pushRecent(*summary)
		c.clearForm()
		c.setNotice(NoticeSuccess, successText, false)
		go c.refreshGrid()
	}()
}

// pushRecent prepends to the bounded recent-entries list.
func (c *Controller) pushRecent(summary bids.BidSummary) {
	c.recent = append([]bids.BidSummary{summary}, c.recent...)
	if len(c.recent) > c.cfg.RecentEntries {
		c.recent = c.recent[:c.cfg.RecentEntries]
	}
}

// applyBidLocally folds a mutation result into the cached grid so totals
// move immediately; the poll that follows is authoritative.
func (c *Controller) applyBidLocally(itemID uint, summary bids.BidSummary) {
	if c.grid == nil || itemID == 0 {
		return
	}
	for i := range c.grid.Items {
		if c.grid.Items[i].ItemID != itemID {
			continue
		}
		card := &c.grid.Items[i]
		replaced := false
		for j := range card.Bids {
			if card.Bids[j].BidID == summary.BidID {
				card.Bids[j] = summary
				replaced = true
				break
			}
		}
		if !replaced {
			card.Bids = append(card.Bids, summary)
		}
		rebuildCard(card)
		break
	}
	c.grid.Summary = bids.Summarize(c.grid.Items)
	c.summary = c.grid.Summary
}

func (c *Controller) removeBidLocally(itemID, bidID uint) {
	if c.grid == nil || itemID == 0 {
		return
	}
	for i := range c.grid.Items {
		if c.grid.Items[i].ItemID != itemID {
			continue
		}
		card := &c.grid.Items[i]
		kept := card.Bids[:0]
		for _, b := range card.Bids {
			if b.BidID != bidID {
				kept = append(kept, b)
			}
		}
		card.Bids = kept
		rebuildCard(card)
		break
	}
	c.grid.Summary = bids.Summarize(c.grid.Items)
	c.summary = c.grid.Summary
}

// rebuildCard recomputes one item card's derived fields from its bid list.
func rebuildCard(card *bids.ItemStatus) {
	card.WinnerCount = 0
	card.AllocatedQuantity = 0
	priceSum := decimal.Zero
	for _, b := range card.Bids {
		if b.NoBid || b.BidderID == models.NoBidSentinel {
			continue
		}
		card.WinnerCount++
		card.AllocatedQuantity += b.QuantityWon
		priceSum = priceSum.Add(b.WinningPrice)
	}
	card.AvailableQuantity = card.TotalQuantity - card.AllocatedQuantity

	switch {
	case card.WinnerCount > 1:
		card.Status = enums.ItemCardMultiple
		card.AveragePrice = priceSum.DivRound(decimal.NewFromInt(int64(card.WinnerCount)), 2)
	case card.WinnerCount == 1:
		card.Status = enums.ItemCardCompleted
		card.AveragePrice = priceSum
	case len(card.Bids) > 0:
		card.Status = enums.ItemCardNoBid
		card.AveragePrice = decimal.Zero
	default:
		card.Status = enums.ItemCardPending
		card.AveragePrice = decimal.Zero
	}
}

// refreshGrid loads the authoritative status feed.
func (c *Controller) refreshGrid() {
	status, err := c.api.AuctionStatus(c.ctx, c.auctionID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if c.ctx.Err() != nil {
			return
		}
		c.logg.Error(c.ctx, "status refresh failed", err)
		return
	}
	c.grid = status
	c.summary = status.Summary
}

// mutationMessage maps a mutation failure to operator-facing text.
func mutationMessage(err error) string {
	if e := pkgerrors.As(err); e != nil {
		switch e.Code() {
		case pkgerrors.CodeValidation, pkgerrors.CodeNotFound, pkgerrors.CodeNotInAuction,
			pkgerrors.CodeConflict, pkgerrors.CodeInventoryExhausted, pkgerrors.CodeStateConflict:
			return e.Message()
		}
	}
	return "save failed, check the connection and try again"
}
