package bidentry

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gavelworks/auctiondesk/internal/bids"
	"github.com/gavelworks/auctiondesk/internal/catalog"
	"github.com/gavelworks/auctiondesk/internal/clock"
	"github.com/gavelworks/auctiondesk/internal/inventory"
	"github.com/gavelworks/auctiondesk/pkg/config"
	pkgerrors "github.com/gavelworks/auctiondesk/pkg/errors"
	"github.com/gavelworks/auctiondesk/pkg/logger"
)

// inputField is a plain validated field (price, quantity).
type inputField struct {
	text         string
	err          string
	errGen       uint64
	textSelected bool
}

// Options configures a Controller. API and AuctionID are required; the rest
// default to production implementations.
type Options struct {
	API       API
	AuctionID uint
	Config    config.EntryConfig
	Clock     clock.Clock
	Timers    TimerFactory
	Logger    *logger.Logger
}

// Controller is the bid-entry engine. One instance drives one operator's
// entry session for one auction. All event handling and snapshotting is
// goroutine-safe; lookups, inventory checks, and mutations run on background
// goroutines and re-enter through the same lock.
type Controller struct {
	mu sync.Mutex

	api       API
	auctionID uint
	cfg       config.EntryConfig
	clk       clock.Clock
	newTimer  TimerFactory
	logg      *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	focus  Field
	item   *lookupField
	bidder *lookupField
	price  inputField
	qty    inputField

	mode         FormMode
	editingBidID uint
	existing     []bids.BidSummary
	inv          *inventory.Snapshot
	invSeq       uint64

	confirmingDelete bool

	notice    *Notice
	noticeGen uint64

	grid    *bids.AuctionStatus
	recent  []bids.BidSummary
	summary bids.AuctionSummary

	mutationInFlight bool
	lastMutation     time.Time
}

// NewController builds an engine bound to one auction.
func NewController(opts Options) (*Controller, error) {
	if opts.API == nil {
		return nil, fmt.Errorf("api client required")
	}
	if opts.AuctionID == 0 {
		return nil, fmt.Errorf("auction id required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Timers == nil {
		opts.Timers = RealTimers
	}
	if opts.Logger == nil {
		opts.Logger = logger.New(logger.Options{ServiceName: "bidentry"})
	}
	if opts.Config.Debounce <= 0 {
		opts.Config.Debounce = 300 * time.Millisecond
	}
	if opts.Config.PollInterval <= 0 {
		opts.Config.PollInterval = 5 * time.Second
	}
	if opts.Config.BlurDelay <= 0 {
		opts.Config.BlurDelay = 400 * time.Millisecond
	}
	if opts.Config.NoticeTimeout <= 0 {
		opts.Config.NoticeTimeout = 5 * time.Second
	}
	if opts.Config.RecentEntries <= 0 {
		opts.Config.RecentEntries = 5
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		api:       opts.API,
		auctionID: opts.AuctionID,
		cfg:       opts.Config,
		clk:       opts.Clock,
		newTimer:  opts.Timers,
		logg:      opts.Logger,
		ctx:       ctx,
		cancel:    cancel,
		focus:     FieldItem,
		item:      newLookupField(),
		bidder:    newLookupField(),
		mode:      ModeCreating,
	}, nil
}

// Close cancels every in-flight lookup and stops background work.
func (c *Controller) Close() {
	c.cancel()
}

// Handle applies one external event to the engine.
func (c *Controller) Handle(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev := ev.(type) {
	case FieldInput:
		c.handleInput(ev)
	case KeyPress:
		c.handleKey(ev)
	case ClickRow:
		c.handleClick(ev)
	case Blur:
		c.handleBlur(ev)
	case Submit:
		c.save()
	case MarkNoBid:
		c.markNoBid()
	case DeleteCurrent:
		c.requestDelete()
	case ConfirmDelete:
		c.confirmDelete()
	case CancelDelete:
		c.confirmingDelete = false
	}
}

// Refresh loads the status grid immediately, outside the poll cadence.
func (c *Controller) Refresh() {
	go c.refreshGrid()
}

func (c *Controller) lookupFor(f Field) *lookupField {
	switch f {
	case FieldItem:
		return c.item
	case FieldBidder:
		return c.bidder
	default:
		return nil
	}
}

// handleInput reacts to raw text changing in any field. For lookup fields it
// restarts the debounce cycle and invalidates whatever lookup was running.
func (c *Controller) handleInput(ev FieldInput) {
	c.focus = ev.Field

	switch ev.Field {
	case FieldItem, FieldBidder:
		fld := c.lookupFor(ev.Field)
		fld.text = ev.Text
		fld.err = ""
		fld.textSelected = false
		seq := fld.supersede()

		if ev.Field == FieldItem {
			// Changing the item abandons whatever selection drove the form.
			c.dropSelectionState()
		}

		if strings.TrimSpace(ev.Text) == "" {
			fld.state = stateIdle{}
			return
		}
		fld.state = stateDebouncing{seq: seq}
		field := ev.Field
		fld.debounce = c.newTimer(c.cfg.Debounce, func() {
			c.beginLookup(field, seq)
		})

	case FieldPrice:
		c.price.text = ev.Text
		c.price.err = ""
		c.price.textSelected = false
	case FieldQuantity:
		c.qty.text = ev.Text
		c.qty.err = ""
		c.qty.textSelected = false
	}
}

// beginLookup fires when a debounce interval elapses. A stale sequence means
// the operator kept typing; the cycle is abandoned.
func (c *Controller) beginLookup(f Field, seq uint64) {
	c.mu.Lock()
	fld := c.lookupFor(f)
	if fld == nil || fld.seq != seq {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(c.ctx)
	fld.cancel = cancel
	fld.state = stateLooking{seq: seq}
	term := fld.text
	c.mu.Unlock()

	go c.runLookup(ctx, f, seq, term)
}

func (c *Controller) runLookup(ctx context.Context, f Field, seq uint64, term string) {
	var (
		rows []Candidate
		err  error
	)
	switch f {
	case FieldItem:
		var items []catalog.ItemResult
		items, err = c.api.LookupItems(ctx, c.auctionID, term)
		for _, it := range items {
			rows = append(rows, Candidate{ID: it.ID, Label: it.Name, Detail: it.Description, Quantity: it.Quantity})
		}
	case FieldBidder:
		var bidders []catalog.BidderResult
		bidders, err = c.api.LookupBidders(ctx, term)
		for _, b := range bidders {
			rows = append(rows, Candidate{ID: b.ID, Label: b.Name, Detail: b.Phone})
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fld := c.lookupFor(f)
	if fld == nil || fld.seq != seq {
		// Superseded while in flight; the response no longer matches what
		// the operator is looking at.
		return
	}
	fld.cancel = nil

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.logg.Error(c.ctx, "lookup failed", err)
		fld.state = stateIdle{}
		c.setFieldError(f, "lookup unavailable, try again")
		return
	}
	if len(rows) == 0 {
		fld.state = stateNoResults{}
		return
	}
	// No row starts highlighted; the raw text stays authoritative until the
	// operator arrows into the dropdown or clicks a row.
	fld.state = stateResults{rows: rows, highlighted: -1}
}

func (c *Controller) handleKey(ev KeyPress) {
	switch ev.Key {
	case KeyArrowDown:
		if fld := c.lookupFor(ev.Field); fld != nil {
			fld.moveHighlight(1)
		}
	case KeyArrowUp:
		if fld := c.lookupFor(ev.Field); fld != nil {
			fld.moveHighlight(-1)
		}
	case KeyEnter:
		if fld := c.lookupFor(ev.Field); fld != nil {
			if cand, ok := fld.highlighted(); ok {
				c.commitCandidate(ev.Field, cand)
				return
			}
		}
		c.validateThenAdvance(ev.Field)
	case KeyTab:
		c.validateThenAdvance(ev.Field)
	case KeyEscape:
		fld := c.lookupFor(ev.Field)
		if fld != nil {
			if _, open := fld.state.(stateResults); open {
				fld.closeDropdown()
				return
			}
			if _, open := fld.state.(stateNoResults); open {
				fld.closeDropdown()
				return
			}
			fld.supersede()
		}
		c.clearForm()
	case KeySkipItem:
		c.clearForm()
	case KeyNoBid:
		c.markNoBid()
	}
}

func (c *Controller) handleClick(ev ClickRow) {
	fld := c.lookupFor(ev.Field)
	if fld == nil {
		return
	}
	fld.cancelBlur()
	s, ok := fld.state.(stateResults)
	if !ok || ev.Index < 0 || ev.Index >= len(s.rows) {
		return
	}
	c.commitCandidate(ev.Field, s.rows[ev.Index])
}

// handleBlur schedules a delayed revalidation. A click into the dropdown
// cancels it before it fires.
func (c *Controller) handleBlur(ev Blur) {
	field := ev.Field
	if fld := c.lookupFor(field); fld != nil {
		fld.cancelBlur()
		fld.blurTimer = c.newTimer(c.cfg.BlurDelay, func() {
			c.revalidateAfterBlur(field)
		})
		return
	}
	// Price and quantity revalidate immediately on blur.
	c.revalidatePlain(field, false)
}

func (c *Controller) revalidateAfterBlur(f Field) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.validateField(f, false)
}

func (c *Controller) revalidatePlain(f Field, advance bool) {
	switch f {
	case FieldPrice, FieldQuantity:
		c.validateField(f, advance)
	}
}

// validateThenAdvance runs the field's validation contract; focus moves only
// when it passes.
func (c *Controller) validateThenAdvance(f Field) {
	c.validateField(f, true)
}

// validateField applies the per-field contract. Failures keep (or pull)
// focus on the field, raise its inline error, and mark the text for
// overtype.
func (c *Controller) validateField(f Field, advance bool) {
	switch f {
	case FieldItem:
		c.validateItem(advance)
	case FieldBidder:
		c.validateBidder(advance)
	case FieldPrice:
		if !validPriceText(c.price.text) {
			c.failField(f, errPriceFormat)
			return
		}
		if advance {
			c.advanceFrom(f)
		}
	case FieldQuantity:
		if strings.TrimSpace(c.qty.text) == "" {
			c.qty.text = "1"
		}
		n, ok := parseQuantity(c.qty.text)
		if !ok {
			c.failField(f, errQuantityFormat)
			return
		}
		if budget, known := c.quantityBudget(); known && n > budget {
			c.failField(f, fmt.Sprintf(errQuantityAvailable, budget))
			return
		}
		if advance {
			c.advanceFrom(f)
		}
	}
}

// quantityBudget is the most the quantity field may take: the item's
// unallocated quantity, plus the edited bid's own share when editing (its
// current allocation is freed by the update).
func (c *Controller) quantityBudget() (int, bool) {
	if c.inv == nil {
		return 0, false
	}
	budget := c.inv.AvailableQuantity
	if c.mode == ModeEditing {
		for _, b := range c.existing {
			if b.BidID == c.editingBidID {
				budget += b.QuantityWon
				break
			}
		}
	}
	return budget, true
}

func (c *Controller) validateItem(advance bool) {
	if strings.TrimSpace(c.item.text) == "" {
		if advance {
			c.advanceFrom(FieldItem)
		}
		return
	}
	if _, ok := c.item.selected(); ok {
		c.item.closeDropdown()
		if advance {
			c.advanceFrom(FieldItem)
		}
		return
	}
	id, ok := parseID(c.item.text)
	if !ok {
		c.failField(FieldItem, errItemNotNumeric)
		return
	}
	// Numeric but unconfirmed: resolve against the auction's catalog. The
	// inventory check doubles as the membership check.
	c.resolveItem(id, advance)
}

func (c *Controller) validateBidder(advance bool) {
	if strings.TrimSpace(c.bidder.text) == "" {
		if advance {
			c.advanceFrom(FieldBidder)
		}
		return
	}
	if _, ok := c.bidder.selected(); ok {
		c.bidder.closeDropdown()
		if advance {
			c.advanceFrom(FieldBidder)
		}
		return
	}
	id, ok := parseID(c.bidder.text)
	if !ok {
		c.failField(FieldBidder, errBidderNotNumeric)
		return
	}
	c.resolveBidder(id, advance)
}

// commitCandidate confirms a dropdown row as the field's selection.
func (c *Controller) commitCandidate(f Field, cand Candidate) {
	fld := c.lookupFor(f)
	if fld == nil {
		return
	}
	fld.supersede()
	fld.cancelBlur()
	fld.text = strconv.FormatUint(uint64(cand.ID), 10)
	fld.state = stateSelected{candidate: cand}
	fld.err = ""

	if f == FieldItem {
		c.loadInventory(cand.ID)
	}
	c.advanceFrom(f)
}

// resolveItem confirms a hand-typed item id belongs to this auction, then
// treats it like a dropdown selection.
func (c *Controller) resolveItem(id uint, advance bool) {
	seq := c.item.supersede()
	c.item.state = stateLooking{seq: seq}
	ctx, cancel := context.WithCancel(c.ctx)
	c.item.cancel = cancel

	go func() {
		snap, err := c.api.CheckInventory(ctx, c.auctionID, id)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.item.seq != seq {
			return
		}
		c.item.cancel = nil

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) || pkgerrors.IsCode(err, pkgerrors.CodeNotInAuction) {
				c.item.state = stateIdle{}
				c.failField(FieldItem, errItemNotInAuction)
				return
			}
			// Network trouble: accept the id unverified rather than trapping
			// the operator.
			c.logg.Error(c.ctx, "inventory check failed", err)
			c.item.state = stateSelected{candidate: Candidate{ID: id, Label: c.item.text}}
			c.inv = nil
			if advance {
				c.advanceFrom(FieldItem)
			}
			return
		}

		c.item.state = stateSelected{candidate: Candidate{ID: id, Label: c.item.text, Quantity: snap.TotalQuantity}}
		c.applyInventory(snap)
		if advance {
			c.advanceFrom(FieldItem)
		}
	}()
}

// resolveBidder confirms a hand-typed bidder id exists.
func (c *Controller) resolveBidder(id uint, advance bool) {
	seq := c.bidder.supersede()
	c.bidder.state = stateLooking{seq: seq}
	ctx, cancel := context.WithCancel(c.ctx)
	c.bidder.cancel = cancel
	term := strconv.FormatUint(uint64(id), 10)

	go func() {
		results, err := c.api.LookupBidders(ctx, term)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.bidder.seq != seq {
			return
		}
		c.bidder.cancel = nil

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logg.Error(c.ctx, "bidder resolve failed", err)
			c.bidder.state = stateIdle{}
			c.setFieldError(FieldBidder, "lookup unavailable, try again")
			return
		}
		for _, b := range results {
			if b.ID == id {
				c.bidder.state = stateSelected{candidate: Candidate{ID: b.ID, Label: b.Name, Detail: b.Phone}}
				c.bidder.err = ""
				if advance {
					c.advanceFrom(FieldBidder)
				}
				return
			}
		}
		c.bidder.state = stateIdle{}
		c.failField(FieldBidder, errBidderNotFound)
	}()
}

// loadInventory fetches the selected item's allocation and existing winners,
// switching the form into edit mode when a bid already exists.
func (c *Controller) loadInventory(itemID uint) {
	c.invSeq++
	seq := c.invSeq
	ctx, cancel := context.WithCancel(c.ctx)

	go func() {
		defer cancel()
		snap, err := c.api.CheckInventory(ctx, c.auctionID, itemID)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.invSeq != seq {
			return
		}
		cand, ok := c.item.selected()
		if !ok || cand.ID != itemID {
			return
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// Degrade to an unverified selection instead of blocking entry.
			c.logg.Error(c.ctx, "inventory check failed", err)
			c.inv = nil
			return
		}
		c.applyInventory(snap)
	}()
}

// applyInventory installs an inventory snapshot and derives the form mode
// from its existing bids.
func (c *Controller) applyInventory(snap *inventory.Snapshot) {
	c.inv = snap
	c.existing = snap.ExistingBids

	if len(snap.ExistingBids) == 0 {
		c.mode = ModeCreating
		c.editingBidID = 0
		return
	}

	first := snap.ExistingBids[0]
	c.mode = ModeEditing
	c.editingBidID = first.BidID

	if first.NoBid {
		c.bidder.reset()
	} else {
		c.bidder.text = strconv.FormatUint(uint64(first.BidderID), 10)
		c.bidder.state = stateSelected{candidate: Candidate{ID: first.BidderID, Label: first.BidderName}}
		c.bidder.err = ""
	}
	c.price.text = first.WinningPrice.StringFixed(2)
	c.price.err = ""
	c.qty.text = strconv.Itoa(first.QuantityWon)
	c.qty.err = ""
}

// dropSelectionState reverts the form to a fresh entry when the item text is
// edited out from under a selection.
func (c *Controller) dropSelectionState() {
	c.invSeq++
	c.inv = nil
	c.existing = nil
	c.mode = ModeCreating
	c.editingBidID = 0
	c.confirmingDelete = false
}

// advanceFrom moves focus along Item, Bidder, Price, Quantity. Advancing
// past Quantity submits the form.
func (c *Controller) advanceFrom(f Field) {
	fld := c.lookupFor(f)
	if fld != nil {
		fld.closeDropdown()
	}
	switch f {
	case FieldItem:
		c.focus = FieldBidder
	case FieldBidder:
		c.focus = FieldPrice
	case FieldPrice:
		c.focus = FieldQuantity
	case FieldQuantity:
		c.save()
	}
}

// failField records an inline error, keeps focus on the field, and marks its
// text for overtype.
func (c *Controller) failField(f Field, msg string) {
	c.focus = f
	if fld := c.lookupFor(f); fld != nil {
		fld.textSelected = true
	}
	switch f {
	case FieldPrice:
		c.price.textSelected = true
	case FieldQuantity:
		c.qty.textSelected = true
	}
	c.setFieldError(f, msg)
}

// setFieldError raises an inline error that clears itself after the notice
// timeout unless the field has re-validated since.
func (c *Controller) setFieldError(f Field, msg string) {
	gen := c.bumpErrGen(f, msg)
	field := f
	c.newTimer(c.cfg.NoticeTimeout, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.clearErrIfCurrent(field, gen)
	})
}

func (c *Controller) bumpErrGen(f Field, msg string) uint64 {
	c.noticeGen++
	gen := c.noticeGen
	switch f {
	case FieldItem:
		c.item.err = msg
		c.item.errGen = gen
	case FieldBidder:
		c.bidder.err = msg
		c.bidder.errGen = gen
	case FieldPrice:
		c.price.err = msg
		c.price.errGen = gen
	case FieldQuantity:
		c.qty.err = msg
		c.qty.errGen = gen
	}
	return gen
}

func (c *Controller) clearErrIfCurrent(f Field, gen uint64) {
	switch f {
	case FieldItem:
		if c.item.errGen == gen {
			c.item.err = ""
		}
	case FieldBidder:
		if c.bidder.errGen == gen {
			c.bidder.err = ""
		}
	case FieldPrice:
		if c.price.errGen == gen {
			c.price.err = ""
		}
	case FieldQuantity:
		if c.qty.errGen == gen {
			c.qty.err = ""
		}
	}
}

// clearForm resets every field and returns focus to Item. Grid, totals, and
// recent entries survive.
func (c *Controller) clearForm() {
	c.item.reset()
	c.bidder.reset()
	c.price = inputField{}
	c.qty = inputField{}
	c.dropSelectionState()
	c.focus = FieldItem
}

// Snapshot returns an immutable render state.
func (c *Controller) Snapshot() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()

	vs := ViewState{
		Focus:            c.focus,
		Item:             lookupView(c.item),
		Bidder:           lookupView(c.bidder),
		Price:            InputView{Text: c.price.text, Error: c.price.err, TextSelected: c.price.textSelected},
		Quantity:         InputView{Text: c.qty.text, Error: c.qty.err, TextSelected: c.qty.textSelected},
		Mode:             c.mode,
		EditingBidID:     c.editingBidID,
		SaveLabel:        SaveLabelCreate,
		CanDelete:        c.mode == ModeEditing,
		ExistingBids:     append([]bids.BidSummary(nil), c.existing...),
		Inventory:        c.inv,
		ConfirmingDelete: c.confirmingDelete,
		Grid:             c.grid,
		Recent:           append([]bids.BidSummary(nil), c.recent...),
		Summary:          c.summary,
		MutationInFlight: c.mutationInFlight,
	}
	if c.mode == ModeEditing {
		vs.SaveLabel = SaveLabelUpdate
	}
	if c.notice != nil {
		n := *c.notice
		vs.Notice = &n
	}
	return vs
}

func lookupView(f *lookupField) LookupView {
	view := LookupView{
		Text:         f.text,
		Phase:        f.state.phase(),
		Highlighted:  -1,
		Error:        f.err,
		TextSelected: f.textSelected,
	}
	if s, ok := f.state.(stateResults); ok {
		view.Rows = append([]Candidate(nil), s.rows...)
		view.Highlighted = s.highlighted
	}
	return view
}

// setNotice raises a notice; transient ones dismiss themselves after the
// configured timeout.
func (c *Controller) setNotice(kind NoticeKind, text string, blocking bool) {
	c.noticeGen++
	gen := c.noticeGen
	c.notice = &Notice{Kind: kind, Text: text, Blocking: blocking}
	if blocking {
		return
	}
	c.newTimer(c.cfg.NoticeTimeout, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.noticeGen == gen {
			c.notice = nil
		}
	})
}

// DismissNotice acknowledges a blocking notice.
func (c *Controller) DismissNotice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = nil
}
