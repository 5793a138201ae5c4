package history

import (
	"time"

	"github.com/cockroachdb/errors"
)

// ErrNotFound is returned when no history entry has the requested id.
var ErrNotFound = errors.New("history entry not found")

// Kind says which backend endpoint an entry describes.
type Kind string

const (
	KindInfo       Kind = "info"
	KindConversion Kind = "conversion"
)

// Outcome is how a lookup or conversion attempt ended.
type Outcome string

const (
	OutcomeOK            Outcome = "ok"
	OutcomeUnmapped      Outcome = "unmapped"
	OutcomeInvalidNumber Outcome = "invalid_number"
	OutcomeFailed        Outcome = "failed"
	OutcomeCancelled     Outcome = "cancelled"
)

// Valid reports whether o is one of the known outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeOK, OutcomeUnmapped, OutcomeInvalidNumber, OutcomeFailed, OutcomeCancelled:
		return true
	}
	return false
}

// Entry is a single recorded attempt. For info lookups only the From fields
// are set.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id,omitempty"`
	Page      string    `json:"page"`
	Kind      Kind      `json:"kind"`
	FromName  string    `json:"from_name,omitempty"`
	FromID    string    `json:"from_id,omitempty"`
	ToName    string    `json:"to_name,omitempty"`
	ToID      string    `json:"to_id,omitempty"`
	Value     string    `json:"value,omitempty"`
	Outcome   Outcome   `json:"outcome"`
	Result    string    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
}
