// Package domain defines the core identities and magnitudes of the ledger module.
//
// # Account identity
//
// An AccountID names one ledger participant. The host runtime owns account
// issuance; this module only validates that a supplied identity is in the
// canonical form (26 lowercase base32 characters) before acting on it.
//
// # Balance
//
// A Balance is a ledger-native magnitude. The module never computes with
// balances; it mirrors the amount reported by the host's balance oracle at
// the moment of a transition.
package domain
