// Package audit contains durable in-product audit writes for submission handling.
//
// This package owns persisted operational audit events that are used for
// security posture, incident analysis, and debugging of rejected submissions.
package audit
