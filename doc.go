// Package waymark implements a minimal state-transition module for a ledger.
//
// The module exposes one mutating operation, Submit, invoked with a signed
// posting grant. A successful submit records the caller's value in a single
// scalar slot, snapshots the caller's reserved balance as reported by the
// host ledger's oracle, and journals one event describing the update. The
// three writes apply atomically; a failed submit leaves no trace beyond its
// audit record.
//
// Hosts embed the module in-process and serialize Submit calls. There is no
// network surface; persistence ships as a SQLite store plus an in-memory
// store for tests.
package waymark
