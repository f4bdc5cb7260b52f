package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/febriansr/prediction-league/internal/domain/user"
	qb "github.com/febriansr/prediction-league/internal/platform/querybuilder"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) UpsertPrincipal(ctx context.Context, p user.Principal) error {
	insertModel := userInsertModel{
		ID:       p.UserID,
		Username: p.Username,
	}
	if p.Email != "" {
		email := p.Email
		insertModel.Email = &email
	}

	query, args, err := qb.InsertModel("users", insertModel,
		"ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, email = EXCLUDED.email, updated_at = NOW()")
	if err != nil {
		return fmt.Errorf("build upsert user query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (user.Principal, bool, error) {
	query, args, err := qb.Select("*").From("users").
		Where(qb.Eq("id", userID)).
		ToSQL()
	if err != nil {
		return user.Principal{}, false, fmt.Errorf("build get user by id query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.Principal{}, false, nil
		}
		return user.Principal{}, false, fmt.Errorf("get user by id: %w", err)
	}

	return row.toDomain(), true, nil
}
