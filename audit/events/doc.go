// Package events defines canonical audit event names.
//
// The names intentionally remain stable (`telemetry.*`) so operational
// consumers can rely on these values across releases.
package events

const (
	// SubmitAccepted captures durable audit events for accepted submissions.
	SubmitAccepted = "telemetry.submit.accepted"
	// SubmitRejected captures durable audit events for rejected submissions.
	SubmitRejected = "telemetry.submit.rejected"
)
