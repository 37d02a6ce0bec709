package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/waymark/domain"
	"github.com/louisbranch/waymark/event"
	"github.com/louisbranch/waymark/storage"
)

// ApplyTransition atomically journals one accepted submission and applies its
// state writes. The event row is inserted before the scalar and snapshot rows
// inside the same transaction, and either all rows commit or none do.
func (s *Store) ApplyTransition(ctx context.Context, t storage.Transition) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if s == nil || s.sqlDB == nil {
		return event.Event{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(string(t.Account)) == "" {
		return event.Event{}, fmt.Errorf("account is required")
	}

	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now().UTC()
	}
	t.Timestamp = t.Timestamp.UTC().Truncate(time.Millisecond)

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return event.Event{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
	INSERT OR IGNORE INTO ledger_event_seq (id, next_seq) VALUES (0, 1)
	`); err != nil {
		return event.Event{}, fmt.Errorf("init event seq: %w", err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `
	SELECT next_seq FROM ledger_event_seq WHERE id = 0
	`).Scan(&seq); err != nil {
		return event.Event{}, fmt.Errorf("get event seq: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
	UPDATE ledger_event_seq SET next_seq = next_seq + 1 WHERE id = 0
	`); err != nil {
		return event.Event{}, fmt.Errorf("increment event seq: %w", err)
	}

	evt := event.Event{
		Seq:       uint64(seq),
		Timestamp: t.Timestamp,
		Type:      event.TypeValuePosted,
		Account:   t.Account,
		Value:     t.Value,
	}

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO ledger_events (seq, timestamp, event_type, account_id, value)
	VALUES (?, ?, ?, ?, ?)
	`,
		int64(evt.Seq),
		toMillis(evt.Timestamp),
		string(evt.Type),
		string(evt.Account),
		int64(evt.Value),
	); err != nil {
		if isConstraintError(err) {
			return event.Event{}, fmt.Errorf("journal seq conflict: %w", err)
		}
		return event.Event{}, fmt.Errorf("append event: %w", err)
	}

	if err := putScalarExec(ctx, tx, t.Value, evt.Timestamp); err != nil {
		return event.Event{}, err
	}
	if err := putSnapshotExec(ctx, tx, t.Account, t.Reserved, evt.Timestamp); err != nil {
		return event.Event{}, err
	}

	if err := tx.Commit(); err != nil {
		return event.Event{}, fmt.Errorf("commit: %w", err)
	}

	return evt, nil
}

// ListEvents returns up to limit journal events with sequence numbers greater
// than afterSeq, in ascending sequence order.
func (s *Store) ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
	SELECT seq, timestamp, event_type, account_id, value
	FROM ledger_events
	WHERE seq > ?
	ORDER BY seq ASC
	LIMIT ?
	`, int64(afterSeq), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]event.Event, 0, limit)
	for rows.Next() {
		evt, err := scanLedgerEvent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// GetLatestEventSeq returns the highest journal sequence number, or zero when
// the journal is empty.
func (s *Store) GetLatestEventSeq(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var seq int64
	if err := s.sqlDB.QueryRowContext(ctx, `
	SELECT COALESCE(MAX(seq), 0) FROM ledger_events
	`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("get latest event seq: %w", err)
	}
	return uint64(seq), nil
}

func scanLedgerEvent(scan scanner) (event.Event, error) {
	var (
		seq       int64
		timestamp int64
		eventType string
		account   string
		value     int64
	)
	if err := scan(&seq, &timestamp, &eventType, &account, &value); err != nil {
		return event.Event{}, err
	}
	return event.Event{
		Seq:       uint64(seq),
		Timestamp: fromMillis(timestamp),
		Type:      event.Type(eventType),
		Account:   domain.AccountID(account),
		Value:     uint32(value),
	}, nil
}
