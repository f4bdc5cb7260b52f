package postgres

import (
	"database/sql"
	"time"

	"github.com/febriansr/prediction-league/internal/domain/fixture"
)

type fixtureTableModel struct {
	ID        string        `db:"id"`
	HomeTeam  string        `db:"home_team"`
	AwayTeam  string        `db:"away_team"`
	KickoffAt time.Time     `db:"kickoff_at"`
	State     string        `db:"state"`
	HomeScore sql.NullInt64 `db:"home_score"`
	AwayScore sql.NullInt64 `db:"away_score"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
}

type groupFixtureTableModel struct {
	ID        string    `db:"id"`
	GroupID   string    `db:"group_id"`
	FixtureID string    `db:"fixture_id"`
	AddedAt   time.Time `db:"added_at"`
}

type groupFixtureInsertModel struct {
	ID        string    `db:"id"`
	GroupID   string    `db:"group_id"`
	FixtureID string    `db:"fixture_id"`
	AddedAt   time.Time `db:"added_at"`
}

type poolEntryTableModel struct {
	groupFixtureTableModel
	FxHomeTeam  string        `db:"home_team"`
	FxAwayTeam  string        `db:"away_team"`
	FxKickoffAt time.Time     `db:"kickoff_at"`
	FxState     string        `db:"state"`
	FxHomeScore sql.NullInt64 `db:"home_score"`
	FxAwayScore sql.NullInt64 `db:"away_score"`
}

func (m fixtureTableModel) toDomain() fixture.Fixture {
	return fixture.Fixture{
		ID:        m.ID,
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		KickoffAt: m.KickoffAt,
		State:     m.State,
		HomeScore: nullInt64ToIntPtr(m.HomeScore),
		AwayScore: nullInt64ToIntPtr(m.AwayScore),
	}
}

func (m groupFixtureTableModel) toDomain() fixture.GroupFixture {
	return fixture.GroupFixture{
		ID:        m.ID,
		GroupID:   m.GroupID,
		FixtureID: m.FixtureID,
		AddedAt:   m.AddedAt,
	}
}

func (m poolEntryTableModel) toDomain() fixture.PoolEntry {
	return fixture.PoolEntry{
		GroupFixture: m.groupFixtureTableModel.toDomain(),
		Fixture: fixture.Fixture{
			ID:        m.FixtureID,
			HomeTeam:  m.FxHomeTeam,
			AwayTeam:  m.FxAwayTeam,
			KickoffAt: m.FxKickoffAt,
			State:     m.FxState,
			HomeScore: nullInt64ToIntPtr(m.FxHomeScore),
			AwayScore: nullInt64ToIntPtr(m.FxAwayScore),
		},
	}
}

func nullInt64ToIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	value := int(v.Int64)
	return &value
}
