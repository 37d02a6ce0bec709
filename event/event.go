// Package event defines the append-only journal records emitted by ledger
// transitions, plus helpers to walk the journal in emission order.
package event

import (
	"strings"
	"time"

	"github.com/louisbranch/waymark/domain"
)

// Type identifies the type of a journal event.
type Type string

// Ledger events.
const (
	// TypeValuePosted records a value accepted into the scalar slot.
	TypeValuePosted Type = "ledger.value_posted"
)

// Event represents an immutable record in the transition journal.
type Event struct {
	// Seq is the event sequence number across the journal (starts at 1).
	// Assigned by storage on append.
	Seq uint64
	// Timestamp is when the transition was accepted.
	Timestamp time.Time
	// Type identifies the kind of event.
	Type Type
	// Account is the authenticated identity that submitted the transition.
	Account domain.AccountID
	// Value is the scalar recorded by the transition.
	Value uint32
}

// IsValid reports whether the event type is usable.
func (t Type) IsValid() bool {
	return strings.TrimSpace(string(t)) != ""
}
