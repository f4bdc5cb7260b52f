package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/febriansr/prediction-league/internal/domain/fixture"
	qb "github.com/febriansr/prediction-league/internal/platform/querybuilder"
)

var poolEntryColumns = []string{
	"gf.id", "gf.group_id", "gf.fixture_id", "gf.added_at",
	"f.home_team", "f.away_team", "f.kickoff_at", "f.state", "f.home_score", "f.away_score",
}

const poolEntryFrom = "group_fixtures gf JOIN fixtures f ON f.id = gf.fixture_id"

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) GetFixtureByID(ctx context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	query, args, err := qb.Select("*").From("fixtures").
		Where(qb.Eq("id", fixtureID)).
		ToSQL()
	if err != nil {
		return fixture.Fixture{}, false, fmt.Errorf("build get fixture by id query: %w", err)
	}

	var row fixtureTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fixture.Fixture{}, false, nil
		}
		return fixture.Fixture{}, false, fmt.Errorf("get fixture by id: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *FixtureRepository) AttachFixture(ctx context.Context, gf fixture.GroupFixture) error {
	insertModel := groupFixtureInsertModel{
		ID:        gf.ID,
		GroupID:   gf.GroupID,
		FixtureID: gf.FixtureID,
		AddedAt:   gf.AddedAt,
	}
	query, args, err := qb.InsertModel("group_fixtures", insertModel, "")
	if err != nil {
		return fmt.Errorf("build attach group fixture query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("attach group fixture: %w", err)
	}

	return nil
}

func (r *FixtureRepository) RemoveFixture(ctx context.Context, groupID, fixtureID string) error {
	query, args, err := qb.DeleteFrom("group_fixtures").
		Where(
			qb.Eq("group_id", groupID),
			qb.Eq("fixture_id", fixtureID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build remove group fixture query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove group fixture: %w", err)
	}

	return nil
}

func (r *FixtureRepository) GetPoolEntry(ctx context.Context, groupID, fixtureID string) (fixture.PoolEntry, bool, error) {
	query, args, err := qb.Select(poolEntryColumns...).From(poolEntryFrom).
		Where(
			qb.Eq("gf.group_id", groupID),
			qb.Eq("gf.fixture_id", fixtureID),
		).
		ToSQL()
	if err != nil {
		return fixture.PoolEntry{}, false, fmt.Errorf("build get group fixture query: %w", err)
	}

	var row poolEntryTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fixture.PoolEntry{}, false, nil
		}
		return fixture.PoolEntry{}, false, fmt.Errorf("get group fixture: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *FixtureRepository) ListPoolByGroup(ctx context.Context, groupID string) ([]fixture.PoolEntry, error) {
	query, args, err := qb.Select(poolEntryColumns...).From(poolEntryFrom).
		Where(qb.Eq("gf.group_id", groupID)).
		OrderBy("f.kickoff_at ASC", "f.id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list group fixtures query: %w", err)
	}

	var rows []poolEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list group fixtures: %w", err)
	}

	out := make([]fixture.PoolEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *FixtureRepository) ListPoolEntriesByFixtureIDs(ctx context.Context, groupID string, fixtureIDs []string) ([]fixture.PoolEntry, error) {
	if len(fixtureIDs) == 0 {
		return nil, nil
	}

	ids := make([]any, 0, len(fixtureIDs))
	for _, id := range fixtureIDs {
		ids = append(ids, id)
	}

	query, args, err := qb.Select(poolEntryColumns...).From(poolEntryFrom).
		Where(
			qb.Eq("gf.group_id", groupID),
			qb.In("gf.fixture_id", ids),
		).
		OrderBy("f.kickoff_at ASC", "f.id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list group fixtures by ids query: %w", err)
	}

	var rows []poolEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list group fixtures by ids: %w", err)
	}

	out := make([]fixture.PoolEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
