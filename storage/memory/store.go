// Package memory provides an in-memory Store for tests and embedding hosts
// that do not need durability.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/waymark/domain"
	"github.com/louisbranch/waymark/event"
	"github.com/louisbranch/waymark/storage"
)

// Store keeps all ledger state in process memory. The zero value is not
// usable; construct with NewStore.
type Store struct {
	mu        sync.RWMutex
	scalar    uint32
	snapshots map[domain.AccountID]domain.Balance
	events    []event.Event
	audits    []storage.AuditEvent
	lastSeq   uint64
	closed    bool
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{snapshots: make(map[domain.AccountID]domain.Balance)}
}

// GetScalar returns the stored scalar, or zero when nothing was ever written.
func (s *Store) GetScalar(ctx context.Context) (uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.snapshots == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, fmt.Errorf("storage is closed")
	}
	return s.scalar, nil
}

// PutScalar overwrites the scalar slot.
func (s *Store) PutScalar(ctx context.Context, value uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.snapshots == nil {
		return fmt.Errorf("storage is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("storage is closed")
	}
	s.scalar = value
	return nil
}

// GetSnapshot returns the recorded balance for an account.
func (s *Store) GetSnapshot(ctx context.Context, account domain.AccountID) (domain.Balance, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.snapshots == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, fmt.Errorf("storage is closed")
	}
	balance, ok := s.snapshots[account]
	if !ok {
		return 0, storage.ErrNotFound
	}
	return balance, nil
}

// PutSnapshot overwrites the recorded balance for an account.
func (s *Store) PutSnapshot(ctx context.Context, account domain.AccountID, balance domain.Balance) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.snapshots == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(string(account)) == "" {
		return fmt.Errorf("account is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("storage is closed")
	}
	s.snapshots[account] = balance
	return nil
}

// ApplyTransition journals a transition and applies both state writes inside
// one critical section, so readers never observe a partial application.
func (s *Store) ApplyTransition(ctx context.Context, t storage.Transition) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if s == nil || s.snapshots == nil {
		return event.Event{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(string(t.Account)) == "" {
		return event.Event{}, fmt.Errorf("account is required")
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now().UTC().Truncate(time.Millisecond)
	} else {
		t.Timestamp = t.Timestamp.UTC().Truncate(time.Millisecond)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return event.Event{}, fmt.Errorf("storage is closed")
	}

	evt := event.Event{
		Seq:       s.lastSeq + 1,
		Timestamp: t.Timestamp,
		Type:      event.TypeValuePosted,
		Account:   t.Account,
		Value:     t.Value,
	}
	s.events = append(s.events, evt)
	s.lastSeq = evt.Seq
	s.scalar = t.Value
	s.snapshots[t.Account] = t.Reserved
	return evt, nil
}

// ListEvents returns journal entries ordered by sequence ascending.
func (s *Store) ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.snapshots == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("storage is closed")
	}
	var page []event.Event
	for _, evt := range s.events {
		if evt.Seq <= afterSeq {
			continue
		}
		page = append(page, evt)
		if len(page) == limit {
			break
		}
	}
	return page, nil
}

// GetLatestEventSeq returns the latest journal sequence number.
func (s *Store) GetLatestEventSeq(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.snapshots == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, fmt.Errorf("storage is closed")
	}
	return s.lastSeq, nil
}

// AppendAuditEvent records an operational audit event.
func (s *Store) AppendAuditEvent(ctx context.Context, evt storage.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.snapshots == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(evt.EventName) == "" {
		return fmt.Errorf("event name is required")
	}
	if strings.TrimSpace(evt.Severity) == "" {
		return fmt.Errorf("severity is required")
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if len(evt.AttributesJSON) == 0 && len(evt.Attributes) > 0 {
		payload, err := json.Marshal(evt.Attributes)
		if err != nil {
			return fmt.Errorf("marshal audit attributes: %w", err)
		}
		evt.AttributesJSON = payload
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("storage is closed")
	}
	s.audits = append(s.audits, evt)
	return nil
}

// ListAuditEvents returns audit records ordered oldest first.
func (s *Store) ListAuditEvents(ctx context.Context, limit int) ([]storage.AuditEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.snapshots == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("storage is closed")
	}
	n := len(s.audits)
	if n > limit {
		n = limit
	}
	page := make([]storage.AuditEvent, n)
	copy(page, s.audits[:n])
	return page, nil
}

// Close marks the store unusable. Subsequent operations fail.
func (s *Store) Close() error {
	if s == nil || s.snapshots == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
