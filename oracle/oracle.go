// Package oracle defines the reserved balance boundary consulted during
// submission handling.
package oracle

import (
	"context"
	"sync"

	"github.com/louisbranch/waymark/domain"
)

// ReserveOracle answers reserved balance queries for accounts. The production
// implementation is host-provided; a failure is treated as a fault that aborts
// the submission it was serving.
type ReserveOracle interface {
	// ReservedBalance returns the balance currently reserved for an account.
	ReservedBalance(ctx context.Context, account domain.AccountID) (domain.Balance, error)
}

// Static serves reserved balances from a fixed in-memory table. Accounts
// without an entry report a zero balance.
type Static struct {
	mu       sync.RWMutex
	balances map[domain.AccountID]domain.Balance
}

// NewStatic creates an empty static oracle.
func NewStatic() *Static {
	return &Static{balances: make(map[domain.AccountID]domain.Balance)}
}

// Set records the reserved balance reported for an account.
func (s *Static) Set(account domain.AccountID, balance domain.Balance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[account] = balance
}

// ReservedBalance implements ReserveOracle.
func (s *Static) ReservedBalance(ctx context.Context, account domain.AccountID) (domain.Balance, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[account], nil
}
