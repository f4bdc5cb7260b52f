package postgres

import (
	"database/sql"
	"time"

	"github.com/febriansr/prediction-league/internal/domain/user"
)

type userTableModel struct {
	ID        string         `db:"id"`
	Username  string         `db:"username"`
	Email     sql.NullString `db:"email"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type userInsertModel struct {
	ID       string  `db:"id"`
	Username string  `db:"username"`
	Email    *string `db:"email"`
}

func (m userTableModel) toDomain() user.Principal {
	return user.Principal{
		UserID:   m.ID,
		Username: m.Username,
		Email:    m.Email.String,
	}
}
