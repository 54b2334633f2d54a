package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mesi0621/storefront-gateway/internal/core/ports"
)

const mergeFailuresCollection = "merge_failures"

// MergeJournal persists guest-cart entries that were lost during the login
// merge. The cart clears the guest blob regardless of per-item failures, so
// these documents are the only record left for diagnostics and support replay.
type MergeJournal struct {
	coll *mongo.Collection
}

var _ ports.MergeJournal = (*MergeJournal)(nil)

func NewMergeJournal(db *mongo.Database) *MergeJournal {
	return &MergeJournal{coll: db.Collection(mergeFailuresCollection)}
}

type mergeFailureDoc struct {
	SessionID  string `bson:"session_id"`
	UserID     string `bson:"user_id"`
	ProductID  string `bson:"product_id"`
	Quantity   int    `bson:"quantity"`
	Reason     string `bson:"reason"`
	OccurredAt int64  `bson:"occurred_at"`
}

func (j *MergeJournal) RecordFailures(ctx context.Context, failures []ports.MergeFailure) error {
	if len(failures) == 0 {
		return nil
	}

	docs := make([]any, 0, len(failures))
	for _, f := range failures {
		docs = append(docs, mergeFailureDoc{
			SessionID:  f.SessionID,
			UserID:     f.UserID,
			ProductID:  f.ProductID,
			Quantity:   f.Quantity,
			Reason:     f.Reason,
			OccurredAt: f.OccurredAt.Unix(),
		})
	}

	if _, err := j.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert merge failures: %w", err)
	}
	return nil
}
