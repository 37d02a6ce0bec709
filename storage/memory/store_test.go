package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/waymark/domain"
	"github.com/louisbranch/waymark/storage"
)

func testAccount(fill string) domain.AccountID {
	return domain.AccountID(strings.Repeat(fill, domain.AccountIDLength))
}

func TestScalarDefaultsToZero(t *testing.T) {
	t.Parallel()

	store := NewStore()
	got, err := store.GetScalar(context.Background())
	if err != nil {
		t.Fatalf("get scalar: %v", err)
	}
	if got != 0 {
		t.Fatalf("scalar = %d, want 0", got)
	}
}

func TestScalarRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewStore()
	if err := store.PutScalar(context.Background(), 42); err != nil {
		t.Fatalf("put scalar: %v", err)
	}
	got, err := store.GetScalar(context.Background())
	if err != nil {
		t.Fatalf("get scalar: %v", err)
	}
	if got != 42 {
		t.Fatalf("scalar = %d, want 42", got)
	}
}

func TestSnapshotMissingAccount(t *testing.T) {
	t.Parallel()

	store := NewStore()
	_, err := store.GetSnapshot(context.Background(), testAccount("a"))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotOverwrites(t *testing.T) {
	t.Parallel()

	account := testAccount("a")
	store := NewStore()
	if err := store.PutSnapshot(context.Background(), account, 50); err != nil {
		t.Fatalf("put snapshot: %v", err)
	}
	if err := store.PutSnapshot(context.Background(), account, 120); err != nil {
		t.Fatalf("put snapshot: %v", err)
	}
	got, err := store.GetSnapshot(context.Background(), account)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if got != 120 {
		t.Fatalf("snapshot = %d, want 120", got)
	}
}

func TestApplyTransitionWritesEverything(t *testing.T) {
	t.Parallel()

	account := testAccount("a")
	ts := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	store := NewStore()

	evt, err := store.ApplyTransition(context.Background(), storage.Transition{
		Account:   account,
		Value:     42,
		Reserved:  100,
		Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("apply transition: %v", err)
	}
	if evt.Seq != 1 {
		t.Fatalf("seq = %d, want 1", evt.Seq)
	}
	if evt.Account != account || evt.Value != 42 {
		t.Fatalf("event = %+v, want account %s value 42", evt, account)
	}

	scalar, err := store.GetScalar(context.Background())
	if err != nil {
		t.Fatalf("get scalar: %v", err)
	}
	if scalar != 42 {
		t.Fatalf("scalar = %d, want 42", scalar)
	}
	snapshot, err := store.GetSnapshot(context.Background(), account)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if snapshot != 100 {
		t.Fatalf("snapshot = %d, want 100", snapshot)
	}

	events, err := store.ListEvents(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if !events[0].Timestamp.Equal(ts) {
		t.Fatalf("timestamp = %v, want %v", events[0].Timestamp, ts)
	}
}

func TestApplyTransitionAssignsIncreasingSeq(t *testing.T) {
	t.Parallel()

	store := NewStore()
	for i := 1; i <= 3; i++ {
		evt, err := store.ApplyTransition(context.Background(), storage.Transition{
			Account: testAccount("b"),
			Value:   uint32(i),
		})
		if err != nil {
			t.Fatalf("apply transition %d: %v", i, err)
		}
		if evt.Seq != uint64(i) {
			t.Fatalf("seq = %d, want %d", evt.Seq, i)
		}
	}
	latest, err := store.GetLatestEventSeq(context.Background())
	if err != nil {
		t.Fatalf("get latest seq: %v", err)
	}
	if latest != 3 {
		t.Fatalf("latest seq = %d, want 3", latest)
	}
}

func TestApplyTransitionRequiresAccount(t *testing.T) {
	t.Parallel()

	store := NewStore()
	if err := store.PutScalar(context.Background(), 7); err != nil {
		t.Fatalf("put scalar: %v", err)
	}

	_, err := store.ApplyTransition(context.Background(), storage.Transition{Value: 99})
	if err == nil {
		t.Fatal("expected error for missing account")
	}

	scalar, err := store.GetScalar(context.Background())
	if err != nil {
		t.Fatalf("get scalar: %v", err)
	}
	if scalar != 7 {
		t.Fatalf("scalar = %d, want 7 after failed transition", scalar)
	}
	latest, err := store.GetLatestEventSeq(context.Background())
	if err != nil {
		t.Fatalf("get latest seq: %v", err)
	}
	if latest != 0 {
		t.Fatalf("latest seq = %d, want 0 after failed transition", latest)
	}
}

func TestListEventsPaging(t *testing.T) {
	t.Parallel()

	store := NewStore()
	for i := 1; i <= 5; i++ {
		if _, err := store.ApplyTransition(context.Background(), storage.Transition{
			Account: testAccount("c"),
			Value:   uint32(i),
		}); err != nil {
			t.Fatalf("apply transition %d: %v", i, err)
		}
	}

	if _, err := store.ListEvents(context.Background(), 0, 0); err == nil {
		t.Fatal("expected error for non-positive limit")
	}

	page, err := store.ListEvents(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page = %d events, want 2", len(page))
	}
	if page[0].Seq != 3 || page[1].Seq != 4 {
		t.Fatalf("page seqs = %d,%d, want 3,4", page[0].Seq, page[1].Seq)
	}
}

func TestAppendAuditEventValidation(t *testing.T) {
	t.Parallel()

	store := NewStore()
	if err := store.AppendAuditEvent(context.Background(), storage.AuditEvent{Severity: "INFO"}); err == nil {
		t.Fatal("expected error for missing event name")
	}
	if err := store.AppendAuditEvent(context.Background(), storage.AuditEvent{EventName: "telemetry.submit.accepted"}); err == nil {
		t.Fatal("expected error for missing severity")
	}
}

func TestAppendAuditEventMarshalsAttributes(t *testing.T) {
	t.Parallel()

	store := NewStore()
	err := store.AppendAuditEvent(context.Background(), storage.AuditEvent{
		EventName:  "telemetry.submit.accepted",
		Severity:   "INFO",
		Attributes: map[string]any{"value": 42},
	})
	if err != nil {
		t.Fatalf("append audit event: %v", err)
	}

	events, err := store.ListAuditEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("list audit events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if len(events[0].AttributesJSON) == 0 {
		t.Fatal("expected attributes json to be set")
	}
	if events[0].Timestamp.IsZero() {
		t.Fatal("expected timestamp to be set")
	}
}

func TestClosedStoreRejectsOperations(t *testing.T) {
	t.Parallel()

	store := NewStore()
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := store.GetScalar(context.Background()); err == nil {
		t.Fatal("expected error after close")
	}
	if _, err := store.ApplyTransition(context.Background(), storage.Transition{
		Account: testAccount("d"),
		Value:   1,
	}); err == nil {
		t.Fatal("expected error after close")
	}
}
