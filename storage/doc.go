// Package storage defines persistence interfaces for the ledger module.
//
// It covers the scalar slot, per-account balance snapshots, the transition
// journal, and operational audit records. Implementations (in-memory and
// SQLite) live in subpackages.
//
// Common error types:
//   - ErrNotFound: requested record is missing
package storage
