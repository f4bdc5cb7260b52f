package postgres

import (
	"fmt"
	"time"

	"github.com/febriansr/prediction-league/internal/domain/prediction"
	"github.com/febriansr/prediction-league/internal/platform/scoreline"
)

type predictionTableModel struct {
	ID             string     `db:"id"`
	GroupID        string     `db:"group_id"`
	GroupFixtureID string     `db:"group_fixture_id"`
	FixtureID      string     `db:"fixture_id"`
	UserID         string     `db:"user_id"`
	Score          string     `db:"score"`
	PlacedAt       time.Time  `db:"placed_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	SettledAt      *time.Time `db:"settled_at"`
	Points         *string    `db:"points"`
}

type predictionInsertModel struct {
	ID             string    `db:"id"`
	GroupID        string    `db:"group_id"`
	GroupFixtureID string    `db:"group_fixture_id"`
	FixtureID      string    `db:"fixture_id"`
	UserID         string    `db:"user_id"`
	Score          string    `db:"score"`
	PlacedAt       time.Time `db:"placed_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (m predictionTableModel) toDomain() (prediction.Prediction, error) {
	home, away, err := scoreline.ParseScore(m.Score)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("decode stored score for prediction=%s: %w", m.ID, err)
	}

	return prediction.Prediction{
		ID:             m.ID,
		GroupID:        m.GroupID,
		GroupFixtureID: m.GroupFixtureID,
		FixtureID:      m.FixtureID,
		UserID:         m.UserID,
		Score:          prediction.Score{Home: home, Away: away},
		PlacedAt:       m.PlacedAt,
		UpdatedAt:      m.UpdatedAt,
		SettledAt:      m.SettledAt,
		Points:         m.Points,
	}, nil
}

func toPredictionInsertModel(p prediction.Prediction) predictionInsertModel {
	return predictionInsertModel{
		ID:             p.ID,
		GroupID:        p.GroupID,
		GroupFixtureID: p.GroupFixtureID,
		FixtureID:      p.FixtureID,
		UserID:         p.UserID,
		Score:          scoreline.EncodeScore(p.Score.Home, p.Score.Away),
		PlacedAt:       p.PlacedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
