package waymark

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/waymark/audit"
	"github.com/louisbranch/waymark/audit/events"
	"github.com/louisbranch/waymark/domain"
	apperrors "github.com/louisbranch/waymark/errors"
	"github.com/louisbranch/waymark/event"
	"github.com/louisbranch/waymark/grant"
	"github.com/louisbranch/waymark/oracle"
	"github.com/louisbranch/waymark/storage"
)

// Submit failure sentinels. Matching is by error code, so errors.Is holds
// across wrapped causes.
var (
	// ErrUnauthenticated reports a caller proof that does not resolve to a
	// valid account-holding identity.
	ErrUnauthenticated = apperrors.New(apperrors.CodeSubmitUnauthenticated, "caller proof is not authenticated")
	// ErrOracleFault reports an unreachable or malfunctioning reserve oracle.
	ErrOracleFault = apperrors.New(apperrors.CodeSubmitOracleFault, "reserve oracle is unavailable")
	// ErrTransitionAborted reports a storage transaction that failed with no
	// writes applied.
	ErrTransitionAborted = apperrors.New(apperrors.CodeSubmitTransitionAborted, "transition was aborted")
)

// Module is the transition handler for the ledger. The host serializes
// Submit calls in admission order; the module takes no internal locks.
type Module struct {
	store   storage.Store
	oracle  oracle.ReserveOracle
	grants  grant.Config
	emitter *audit.Emitter
	now     func() time.Time
}

// Option configures module behavior.
type Option func(*Module)

// WithAudit redirects audit records to a dedicated store. By default audit
// records land in the module's own store.
func WithAudit(store storage.AuditEventStore) Option {
	return func(m *Module) {
		m.emitter = audit.NewEmitter(store)
	}
}

// WithNow overrides the clock used for transition and audit timestamps.
func WithNow(now func() time.Time) Option {
	return func(m *Module) {
		m.now = now
	}
}

// New assembles a transition handler over the provided store and oracle.
// grants configures posting-grant verification for Submit callers.
func New(store storage.Store, reserves oracle.ReserveOracle, grants grant.Config, opts ...Option) (*Module, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if reserves == nil {
		return nil, fmt.Errorf("reserve oracle is required")
	}

	m := &Module{
		store:   store,
		oracle:  reserves,
		grants:  grants,
		emitter: audit.NewEmitter(store),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m, nil
}

// Submit authenticates callerProof, snapshots the caller's reserved balance
// from the oracle, and applies one atomic transition recording value.
//
// Verification failures return ErrUnauthenticated, oracle failures
// ErrOracleFault, and storage failures ErrTransitionAborted. A failed submit
// leaves the scalar slot and the snapshot map unchanged and appends no
// journal event.
func (m *Module) Submit(ctx context.Context, callerProof string, value uint32) error {
	if m == nil || m.store == nil {
		return fmt.Errorf("module is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	claims, err := grant.Validate(callerProof, m.grants)
	if err != nil {
		wrapped := apperrors.Wrap(apperrors.CodeSubmitUnauthenticated, "caller proof is not authenticated", err)
		m.emitRejected(ctx, "", value, wrapped)
		return wrapped
	}
	account := claims.Account

	reserved, err := m.oracle.ReservedBalance(ctx, account)
	if err != nil {
		wrapped := apperrors.Wrap(apperrors.CodeSubmitOracleFault, "reserve oracle is unavailable", err)
		m.emitRejected(ctx, account, value, wrapped)
		return wrapped
	}

	evt, err := m.store.ApplyTransition(ctx, storage.Transition{
		Account:   account,
		Value:     value,
		Reserved:  reserved,
		Timestamp: m.now().UTC(),
	})
	if err != nil {
		wrapped := apperrors.Wrap(apperrors.CodeSubmitTransitionAborted, "transition was aborted", err)
		m.emitRejected(ctx, account, value, wrapped)
		return wrapped
	}

	m.emitAccepted(ctx, evt)
	return nil
}

// Value returns the current scalar slot. A slot that was never written reads
// as zero.
func (m *Module) Value(ctx context.Context) (uint32, error) {
	if m == nil || m.store == nil {
		return 0, fmt.Errorf("module is not configured")
	}
	return m.store.GetScalar(ctx)
}

// Snapshot returns the recorded reserve snapshot for account. Accounts that
// never submitted return storage.ErrNotFound.
func (m *Module) Snapshot(ctx context.Context, account domain.AccountID) (domain.Balance, error) {
	if m == nil || m.store == nil {
		return 0, fmt.Errorf("module is not configured")
	}
	return m.store.GetSnapshot(ctx, account)
}

// Events returns up to limit journal events with sequence numbers greater
// than afterSeq, in emission order.
func (m *Module) Events(ctx context.Context, afterSeq uint64, limit int) ([]event.Event, error) {
	if m == nil || m.store == nil {
		return nil, fmt.Errorf("module is not configured")
	}
	return m.store.ListEvents(ctx, afterSeq, limit)
}

// Close releases the module's store.
func (m *Module) Close() error {
	if m == nil || m.store == nil {
		return nil
	}
	return m.store.Close()
}

func (m *Module) emitAccepted(ctx context.Context, evt event.Event) {
	m.emit(ctx, storage.AuditEvent{
		EventName: events.SubmitAccepted,
		Severity:  string(audit.SeverityInfo),
		Account:   evt.Account,
		Attributes: map[string]any{
			"value": evt.Value,
			"seq":   evt.Seq,
		},
	})
}

func (m *Module) emitRejected(ctx context.Context, account domain.AccountID, value uint32, cause error) {
	m.emit(ctx, storage.AuditEvent{
		EventName: events.SubmitRejected,
		Severity:  string(audit.SeverityError),
		Account:   account,
		Attributes: map[string]any{
			"value": value,
			"code":  string(apperrors.GetCode(cause)),
		},
	})
}

func (m *Module) emit(ctx context.Context, evt storage.AuditEvent) {
	var traceID, spanID string
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		traceID = sc.TraceID().String()
		spanID = sc.SpanID().String()
	}
	evt.TraceID = traceID
	evt.SpanID = spanID
	evt.Timestamp = m.now().UTC()

	if err := m.emitter.Emit(ctx, evt); err != nil {
		log.Printf("audit emit %s: %v", evt.EventName, err)
	}
}
