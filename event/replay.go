package event

import (
	"context"
	"fmt"
)

const replayPageSize = 200

// Log reads stored journal events in sequence order.
type Log interface {
	// ListEvents returns events with seq greater than afterSeq, ascending, up to limit.
	ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]Event, error)
}

// Replay walks the whole journal from the start and applies events in
// emission order. It returns the last sequence number applied.
func Replay(ctx context.Context, log Log, apply func(Event) error) (uint64, error) {
	return ReplayFrom(ctx, log, 0, apply)
}

// ReplayFrom walks journal events with seq greater than afterSeq in emission
// order. Applying stops at the first apply error, returning the sequence
// number of the event that failed.
func ReplayFrom(ctx context.Context, log Log, afterSeq uint64, apply func(Event) error) (uint64, error) {
	if log == nil {
		return afterSeq, fmt.Errorf("event log is not configured")
	}
	if apply == nil {
		return afterSeq, fmt.Errorf("apply func is required")
	}

	lastSeq := afterSeq
	for {
		events, err := log.ListEvents(ctx, lastSeq, replayPageSize)
		if err != nil {
			return lastSeq, err
		}
		if len(events) == 0 {
			return lastSeq, nil
		}
		for _, evt := range events {
			lastSeq = evt.Seq
			if err := apply(evt); err != nil {
				return lastSeq, err
			}
		}
	}
}
