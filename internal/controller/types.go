package controller

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/sp-meter/circles/internal/history"
)

var (
	// ErrUnknownControl is returned for an event naming a circle the page
	// does not have.
	ErrUnknownControl = errors.New("unknown circle")
	// ErrNothingSelected is returned by Select before a first value was
	// committed.
	ErrNothingSelected = errors.New("no first unit selected")
	// ErrClosed is returned for events arriving after Close.
	ErrClosed = errors.New("controller closed")
)

// Region names one of the two display areas of a page.
type Region string

const (
	RegionExplanation Region = "explanation"
	RegionResult      Region = "result"
)

// View receives every visible change the controller makes. Calls are made
// while the controller holds its lock, so implementations must not call
// back into the controller.
type View interface {
	// SetRegion replaces the HTML content of a region. Empty html clears it.
	SetRegion(region Region, html string)
	// SetTooltip opens or closes the tooltip of the circle with label.
	// Opening moves focus to the tooltip's input.
	SetTooltip(label string, open bool)
	// ClearInputs empties every tooltip input.
	ClearInputs()
}

// Recorder persists lookup and conversion attempts. *history.Store
// satisfies it.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) (string, error)
}

// State is the selection state machine position.
type State int

const (
	// Idle means no first unit has been committed.
	Idle State = iota
	// FirstChosen means a first unit and value are held; the next circle
	// click converts.
	FirstChosen
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FirstChosen:
		return "first_chosen"
	}
	return "unknown"
}

// Selection is the committed first unit. All fields are set and cleared
// together.
type Selection struct {
	Label string
	Name  string
	Value string
}
