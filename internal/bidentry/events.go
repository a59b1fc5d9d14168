package bidentry

// Field identifies one input of the entry form. Focus advances in the order
// Item, Bidder, Price, Quantity.
type Field string

const (
	FieldItem     Field = "item"
	FieldBidder   Field = "bidder"
	FieldPrice    Field = "price"
	FieldQuantity Field = "quantity"
)

// Key is a non-character key the engine reacts to.
type Key string

const (
	KeyTab       Key = "tab"
	KeyEnter     Key = "enter"
	KeyEscape    Key = "escape"
	KeyArrowUp   Key = "arrow_up"
	KeyArrowDown Key = "arrow_down"
	KeySkipItem  Key = "f5"
	KeyNoBid     Key = "f6"
)

// Event is one external input to the engine. The concrete types below are
// the only implementations.
type Event interface {
	isEvent()
}

// FieldInput replaces a field's raw text (the result of a keystroke).
type FieldInput struct {
	Field Field
	Text  string
}

// KeyPress is a non-character key pressed while a field has focus.
type KeyPress struct {
	Field Field
	Key   Key
}

// ClickRow selects a dropdown row by index.
type ClickRow struct {
	Field Field
	Index int
}

// Blur reports focus leaving a field.
type Blur struct {
	Field Field
}

// Submit asks the engine to save the current form.
type Submit struct{}

// MarkNoBid records the explicit no-bid marker for the selected item.
type MarkNoBid struct{}

// DeleteCurrent requests deletion of the bid being edited; the engine asks
// for confirmation first.
type DeleteCurrent struct{}

// ConfirmDelete completes a pending delete request.
type ConfirmDelete struct{}

// CancelDelete abandons a pending delete request.
type CancelDelete struct{}

func (FieldInput) isEvent()    {}
func (KeyPress) isEvent()      {}
func (ClickRow) isEvent()      {}
func (Blur) isEvent()          {}
func (Submit) isEvent()        {}
func (MarkNoBid) isEvent()     {}
func (DeleteCurrent) isEvent() {}
func (ConfirmDelete) isEvent() {}
func (CancelDelete) isEvent()  {}
