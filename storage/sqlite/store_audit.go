package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/waymark/domain"
	"github.com/louisbranch/waymark/storage"
)

// AppendAuditEvent records an operational audit event.
func (s *Store) AppendAuditEvent(ctx context.Context, evt storage.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
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

	_, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO audit_events (
		timestamp, event_name, severity, account_id, request_id, trace_id, span_id, attributes_json
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		toMillis(evt.Timestamp),
		evt.EventName,
		evt.Severity,
		toNullString(string(evt.Account)),
		toNullString(evt.RequestID),
		toNullString(evt.TraceID),
		toNullString(evt.SpanID),
		evt.AttributesJSON,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListAuditEvents returns up to limit audit events in insertion order.
func (s *Store) ListAuditEvents(ctx context.Context, limit int) ([]storage.AuditEvent, error) {
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
	SELECT timestamp, event_name, severity, account_id, request_id, trace_id, span_id, attributes_json
	FROM audit_events
	ORDER BY id ASC
	LIMIT ?
	`, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	events := make([]storage.AuditEvent, 0, limit)
	for rows.Next() {
		evt, err := scanAuditEvent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func scanAuditEvent(scan scanner) (storage.AuditEvent, error) {
	var (
		timestamp      int64
		eventName      string
		severity       string
		account        sql.NullString
		requestID      sql.NullString
		traceID        sql.NullString
		spanID         sql.NullString
		attributesJSON []byte
	)
	if err := scan(&timestamp, &eventName, &severity, &account, &requestID, &traceID, &spanID, &attributesJSON); err != nil {
		return storage.AuditEvent{}, err
	}
	return storage.AuditEvent{
		Timestamp:      fromMillis(timestamp),
		EventName:      eventName,
		Severity:       severity,
		Account:        domain.AccountID(account.String),
		RequestID:      requestID.String,
		TraceID:        traceID.String,
		SpanID:         spanID.String,
		AttributesJSON: attributesJSON,
	}, nil
}

func toNullString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
