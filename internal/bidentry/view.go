package bidentry

import (
	"github.com/gavelworks/auctiondesk/internal/bids"
	"github.com/gavelworks/auctiondesk/internal/inventory"
)

// FormMode distinguishes a fresh entry from an edit of an existing bid.
type FormMode string

const (
	ModeCreating FormMode = "creating"
	ModeEditing  FormMode = "editing"
)

// Save-button labels per form mode.
const (
	SaveLabelCreate = "SAVE BID"
	SaveLabelUpdate = "UPDATE BID"
)

// NoticeKind classifies a notice: transient confirmations auto-dismiss,
// blocking failures stay until acknowledged.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a user-facing message raised by the engine.
type Notice struct {
	Kind     NoticeKind
	Text     string
	Blocking bool
}

// LookupView renders one typeahead field.
type LookupView struct {
	Text         string
	Phase        Phase
	Rows         []Candidate
	Highlighted  int
	Error        string
	TextSelected bool
}

// InputView renders a plain validated field.
type InputView struct {
	Text         string
	Error        string
	TextSelected bool
}

// ViewState is an immutable snapshot of everything a renderer needs. It is
// recomputed on demand; mutating it has no effect on the engine.
type ViewState struct {
	Focus    Field
	Item     LookupView
	Bidder   LookupView
	Price    InputView
	Quantity InputView

	Mode         FormMode
	EditingBidID uint
	SaveLabel    string
	CanDelete    bool

	// ExistingBids lists every active winner of the selected item, not just
	// the one loaded into the form.
	ExistingBids []bids.BidSummary
	Inventory    *inventory.Snapshot

	ConfirmingDelete bool
	Notice           *Notice

	Grid    *bids.AuctionStatus
	Recent  []bids.BidSummary
	Summary bids.AuctionSummary

	MutationInFlight bool
}
