package bidentry

import (
	"context"
	"time"
)

// Phase names a lookup field's position in its state machine.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseDebouncing Phase = "debouncing"
	PhaseLooking    Phase = "looking"
	PhaseResults    Phase = "results"
	PhaseNoResults  Phase = "no_results"
	PhaseSelected   Phase = "selected"
)

// Candidate is one dropdown row, normalized across item and bidder lookups.
type Candidate struct {
	ID       uint
	Label    string
	Detail   string
	Quantity int
}

// fieldState is the tagged union behind a lookup field. Exactly the types
// below implement it; handlers switch exhaustively.
type fieldState interface {
	phase() Phase
}

type stateIdle struct{}

type stateDebouncing struct{ seq uint64 }

type stateLooking struct{ seq uint64 }

type stateResults struct {
	rows        []Candidate
	highlighted int // -1 means raw text is authoritative
}

type stateNoResults struct{}

type stateSelected struct{ candidate Candidate }

func (stateIdle) phase() Phase       { return PhaseIdle }
func (stateDebouncing) phase() Phase { return PhaseDebouncing }
func (stateLooking) phase() Phase    { return PhaseLooking }
func (stateResults) phase() Phase    { return PhaseResults }
func (stateNoResults) phase() Phase  { return PhaseNoResults }
func (stateSelected) phase() Phase   { return PhaseSelected }

// Timer is a cancellable one-shot timer. The production factory wraps
// time.AfterFunc; tests substitute a manual trigger.
type Timer interface {
	Stop() bool
}

// TimerFactory schedules fn after d.
type TimerFactory func(d time.Duration, fn func()) Timer

// RealTimers is the production TimerFactory.
func RealTimers(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// lookupField holds one typeahead field's text, state, and in-flight lookup
// bookkeeping. The seq counter discards responses that arrive after the text
// has changed again.
type lookupField struct {
	text         string
	state        fieldState
	seq          uint64
	cancel       context.CancelFunc
	debounce     Timer
	blurTimer    Timer
	err          string
	errGen       uint64
	textSelected bool
}

func newLookupField() *lookupField {
	return &lookupField{state: stateIdle{}}
}

// supersede invalidates any pending debounce and in-flight lookup for this
// field and returns the next request sequence.
func (f *lookupField) supersede() uint64 {
	if f.debounce != nil {
		f.debounce.Stop()
		f.debounce = nil
	}
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.seq++
	return f.seq
}

func (f *lookupField) cancelBlur() {
	if f.blurTimer != nil {
		f.blurTimer.Stop()
		f.blurTimer = nil
	}
}

// reset returns the field to idle, dropping text, errors, and any pending
// work.
func (f *lookupField) reset() {
	f.supersede()
	f.cancelBlur()
	f.text = ""
	f.state = stateIdle{}
	f.err = ""
	f.textSelected = false
}

// closeDropdown hides results without touching the text.
func (f *lookupField) closeDropdown() {
	switch f.state.(type) {
	case stateResults, stateNoResults:
		f.state = stateIdle{}
	}
}

// highlighted returns the currently highlighted candidate, if any.
func (f *lookupField) highlighted() (Candidate, bool) {
	s, ok := f.state.(stateResults)
	if !ok || s.highlighted < 0 || s.highlighted >= len(s.rows) {
		return Candidate{}, false
	}
	return s.rows[s.highlighted], true
}

// moveHighlight shifts the dropdown highlight by delta, clamped to
// [-1, len(rows)-1].
func (f *lookupField) moveHighlight(delta int) {
	s, ok := f.state.(stateResults)
	if !ok {
		return
	}
	next := s.highlighted + delta
	if next < -1 {
		next = -1
	}
	if next > len(s.rows)-1 {
		next = len(s.rows) - 1
	}
	s.highlighted = next
	f.state = s
}

// selected returns the confirmed candidate when the field is in the selected
// state.
func (f *lookupField) selected() (Candidate, bool) {
	s, ok := f.state.(stateSelected)
	if !ok {
		return Candidate{}, false
	}
	return s.candidate, true
}
