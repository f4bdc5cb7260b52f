package postgres

import (
	"time"

	"github.com/febriansr/prediction-league/internal/domain/nudge"
)

type nudgeEventTableModel struct {
	ID           string    `db:"id"`
	GroupID      string    `db:"group_id"`
	FixtureID    string    `db:"fixture_id"`
	NudgerUserID string    `db:"nudger_user_id"`
	TargetUserID string    `db:"target_user_id"`
	CreatedAt    time.Time `db:"created_at"`
}

type nudgeEventInsertModel struct {
	ID           string    `db:"id"`
	GroupID      string    `db:"group_id"`
	FixtureID    string    `db:"fixture_id"`
	NudgerUserID string    `db:"nudger_user_id"`
	TargetUserID string    `db:"target_user_id"`
	CreatedAt    time.Time `db:"created_at"`
}

func (m nudgeEventTableModel) toDomain() nudge.Event {
	return nudge.Event{
		ID:           m.ID,
		GroupID:      m.GroupID,
		FixtureID:    m.FixtureID,
		NudgerUserID: m.NudgerUserID,
		TargetUserID: m.TargetUserID,
		CreatedAt:    m.CreatedAt,
	}
}
