// Package errors provides structured error handling for ledger module operations.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Submit errors
	CodeSubmitUnauthenticated   Code = "SUBMIT_UNAUTHENTICATED"
	CodeSubmitOracleFault       Code = "SUBMIT_ORACLE_FAULT"
	CodeSubmitTransitionAborted Code = "SUBMIT_TRANSITION_ABORTED"

	// Posting grant errors
	CodeGrantInvalid  Code = "GRANT_INVALID"
	CodeGrantExpired  Code = "GRANT_EXPIRED"
	CodeGrantMismatch Code = "GRANT_MISMATCH"

	// Account errors
	CodeAccountIDInvalid Code = "ACCOUNT_ID_INVALID"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)
