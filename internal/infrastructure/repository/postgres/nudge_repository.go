package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/febriansr/prediction-league/internal/domain/nudge"
	qb "github.com/febriansr/prediction-league/internal/platform/querybuilder"
)

type NudgeRepository struct {
	db *sqlx.DB
}

func NewNudgeRepository(db *sqlx.DB) *NudgeRepository {
	return &NudgeRepository{db: db}
}

// Create inserts the event as-is. The unique constraint over (group_id,
// fixture_id, nudger_user_id, target_user_id) is the duplicate check;
// there is deliberately no read before the write.
func (r *NudgeRepository) Create(ctx context.Context, e nudge.Event) error {
	insertModel := nudgeEventInsertModel{
		ID:           e.ID,
		GroupID:      e.GroupID,
		FixtureID:    e.FixtureID,
		NudgerUserID: e.NudgerUserID,
		TargetUserID: e.TargetUserID,
		CreatedAt:    e.CreatedAt,
	}
	query, args, err := qb.InsertModel("nudge_events", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create nudge event query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: nudge event already exists", nudge.ErrDuplicateEvent)
		}
		return fmt.Errorf("create nudge event: %w", err)
	}

	return nil
}

func (r *NudgeRepository) ListByNudgerInGroup(ctx context.Context, groupID, nudgerUserID string) ([]nudge.Event, error) {
	query, args, err := qb.Select("*").From("nudge_events").
		Where(
			qb.Eq("group_id", groupID),
			qb.Eq("nudger_user_id", nudgerUserID),
		).
		OrderBy("created_at ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list nudge events query: %w", err)
	}

	var rows []nudgeEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list nudge events: %w", err)
	}

	out := make([]nudge.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
