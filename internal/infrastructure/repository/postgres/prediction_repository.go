package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/febriansr/prediction-league/internal/domain/prediction"
	qb "github.com/febriansr/prediction-league/internal/platform/querybuilder"
)

// predictionUpsertSuffix keeps id and placed_at from the first insert and
// replaces the rest on resubmission.
const predictionUpsertSuffix = "ON CONFLICT (user_id, group_fixture_id) DO UPDATE SET score = EXCLUDED.score, updated_at = EXCLUDED.updated_at"

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Upsert(ctx context.Context, p prediction.Prediction) error {
	query, args, err := qb.InsertModel("predictions", toPredictionInsertModel(p), predictionUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert prediction query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert prediction: %w", err)
	}

	return nil
}

func (r *PredictionRepository) UpsertBatch(ctx context.Context, items []prediction.Prediction) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert prediction batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, p := range items {
		query, args, err := qb.InsertModel("predictions", toPredictionInsertModel(p), predictionUpsertSuffix)
		if err != nil {
			return fmt.Errorf("build upsert prediction query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert prediction for fixture=%s: %w", p.FixtureID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert prediction batch tx: %w", err)
	}

	return nil
}

func (r *PredictionRepository) GetByUserAndGroupFixture(ctx context.Context, userID, groupFixtureID string) (prediction.Prediction, bool, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("group_fixture_id", groupFixtureID),
		).
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("build get prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, false, nil
		}
		return prediction.Prediction{}, false, fmt.Errorf("get prediction: %w", err)
	}

	item, err := row.toDomain()
	if err != nil {
		return prediction.Prediction{}, false, err
	}
	return item, true, nil
}

func (r *PredictionRepository) ListByGroupAndUser(ctx context.Context, groupID, userID string) ([]prediction.Prediction, error) {
	return r.list(ctx, qb.Eq("group_id", groupID), qb.Eq("user_id", userID))
}

func (r *PredictionRepository) ListByGroup(ctx context.Context, groupID string) ([]prediction.Prediction, error) {
	return r.list(ctx, qb.Eq("group_id", groupID))
}

func (r *PredictionRepository) list(ctx context.Context, conditions ...qb.Condition) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(conditions...).
		OrderBy("fixture_id ASC", "user_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list predictions query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// SumPointsByUser aggregates settled points per joined member inside the
// store. Points are stored as text; values that are not plain integers
// count as zero rather than failing the whole aggregate.
func (r *PredictionRepository) SumPointsByUser(ctx context.Context, groupID string) ([]prediction.UserPointsSum, error) {
	query, args, err := qb.Select(
		"p.user_id",
		`COALESCE(SUM(CASE WHEN p.points ~ '^-?[0-9]+$' THEN p.points::int ELSE 0 END), 0) AS total_points`,
	).
		From("predictions p JOIN group_members gm ON gm.group_id = p.group_id AND gm.user_id = p.user_id").
		Where(
			qb.Eq("p.group_id", groupID),
			qb.EqLiteral("gm.status", "joined"),
		).
		GroupBy("p.user_id").
		OrderBy("p.user_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build sum points query: %w", err)
	}

	var rows []struct {
		UserID      string `db:"user_id"`
		TotalPoints int    `db:"total_points"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sum points by user: %w", err)
	}

	out := make([]prediction.UserPointsSum, 0, len(rows))
	for _, row := range rows {
		out = append(out, prediction.UserPointsSum{UserID: row.UserID, TotalPoints: row.TotalPoints})
	}
	return out, nil
}
