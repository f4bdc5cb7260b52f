package prediction

import "context"

type Repository interface {
	// Upsert writes by the (user, group fixture) natural key. placed_at is
	// set only on first insert; updated_at advances on every write. The
	// store's unique constraint is the sole guard against duplicate rows
	// under concurrent submissions.
	Upsert(ctx context.Context, p Prediction) error
	// UpsertBatch persists all rows in a single transaction: all or none.
	UpsertBatch(ctx context.Context, items []Prediction) error
	GetByUserAndGroupFixture(ctx context.Context, userID, groupFixtureID string) (Prediction, bool, error)
	ListByGroupAndUser(ctx context.Context, groupID, userID string) ([]Prediction, error)
	ListByGroup(ctx context.Context, groupID string) ([]Prediction, error)
	// SumPointsByUser aggregates text-encoded points per joined member.
	// Values that do not parse as integers count as zero.
	SumPointsByUser(ctx context.Context, groupID string) ([]UserPointsSum, error)
}
