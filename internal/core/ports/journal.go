package ports

import (
	"context"
	"time"
)

// MergeFailure records one guest-cart entry that did not make it into the
// remote cart during the login merge. The merge clears the guest cart
// regardless of per-item failures, so the journal is the only trace left for
// diagnostics and support-driven replay.
type MergeFailure struct {
	SessionID  string
	UserID     string
	ProductID  string
	Quantity   int
	Reason     string
	OccurredAt time.Time
}

// MergeJournal persists merge failures best-effort. A journal write failure
// is logged and swallowed; it never fails the merge.
type MergeJournal interface {
	RecordFailures(ctx context.Context, failures []MergeFailure) error
}
