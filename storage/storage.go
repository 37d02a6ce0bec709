package storage

import (
	"context"
	"time"

	"github.com/louisbranch/waymark/domain"
	apperrors "github.com/louisbranch/waymark/errors"
	"github.com/louisbranch/waymark/event"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "never written" states
// and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// Transition carries the full effect of one accepted submission: the journal
// entry plus both state writes. Stores apply it as a unit so a failure leaves
// the scalar slot, the snapshot map, and the journal untouched.
type Transition struct {
	Account   domain.AccountID
	Value     uint32
	Reserved  domain.Balance
	Timestamp time.Time
}

// ScalarStore owns the single persisted scalar slot.
type ScalarStore interface {
	// GetScalar returns the stored scalar.
	// Returns 0 if the slot was never written.
	GetScalar(ctx context.Context) (uint32, error)
	// PutScalar overwrites the scalar slot.
	PutScalar(ctx context.Context, value uint32) error
}

// SnapshotStore owns the per-account balance snapshot map.
type SnapshotStore interface {
	// GetSnapshot returns the recorded balance for an account.
	// Returns ErrNotFound if the account was never written.
	GetSnapshot(ctx context.Context, account domain.AccountID) (domain.Balance, error)
	// PutSnapshot overwrites the recorded balance for an account.
	PutSnapshot(ctx context.Context, account domain.AccountID, balance domain.Balance) error
}

// EventStore owns the transition journal boundary that drives replay and
// audit trails; this is the record of every accepted submission.
type EventStore interface {
	// ApplyTransition atomically journals a transition and applies both state
	// writes, returning the journal entry with its sequence assigned.
	ApplyTransition(ctx context.Context, t Transition) (event.Event, error)
	// ListEvents returns journal entries ordered by sequence ascending.
	ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]event.Event, error)
	// GetLatestEventSeq returns the latest journal sequence number.
	// Returns 0 if no events exist.
	GetLatestEventSeq(ctx context.Context) (uint64, error)
}

// AuditEvent captures operational observations emitted during submission handling.
type AuditEvent struct {
	Timestamp      time.Time
	EventName      string
	Severity       string
	Account        domain.AccountID
	RequestID      string
	TraceID        string
	SpanID         string
	Attributes     map[string]any
	AttributesJSON []byte
}

// AuditEventStore persists operational audit records for incident analysis.
type AuditEventStore interface {
	AppendAuditEvent(ctx context.Context, evt AuditEvent) error
	// ListAuditEvents returns audit records ordered oldest first.
	ListAuditEvents(ctx context.Context, limit int) ([]AuditEvent, error)
}

// Store is a composite interface for all persistence concerns used by the
// transition handler and its read surface.
type Store interface {
	ScalarStore
	SnapshotStore
	EventStore
	AuditEventStore
	Close() error
}
