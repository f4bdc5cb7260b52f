package postgres

import (
	"time"

	"github.com/febriansr/prediction-league/internal/domain/group"
)

type groupTableModel struct {
	ID                 string    `db:"id"`
	CreatorUserID      string    `db:"creator_user_id"`
	Name               string    `db:"name"`
	InviteCode         string    `db:"invite_code"`
	Status             string    `db:"status"`
	MaxMembers         int       `db:"max_members"`
	ScoreOnTheNose     int       `db:"score_on_the_nose"`
	ScoreCorrectDiff   int       `db:"score_correct_difference"`
	ScoreOutcome       int       `db:"score_outcome"`
	NudgeEnabled       bool      `db:"nudge_enabled"`
	NudgeWindowSeconds int64     `db:"nudge_window_seconds"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

type groupInsertModel struct {
	ID                 string `db:"id"`
	CreatorUserID      string `db:"creator_user_id"`
	Name               string `db:"name"`
	InviteCode         string `db:"invite_code"`
	Status             string `db:"status"`
	MaxMembers         int    `db:"max_members"`
	ScoreOnTheNose     int    `db:"score_on_the_nose"`
	ScoreCorrectDiff   int    `db:"score_correct_difference"`
	ScoreOutcome       int    `db:"score_outcome"`
	NudgeEnabled       bool   `db:"nudge_enabled"`
	NudgeWindowSeconds int64  `db:"nudge_window_seconds"`
}

type memberTableModel struct {
	GroupID   string    `db:"group_id"`
	UserID    string    `db:"user_id"`
	Status    string    `db:"status"`
	JoinedAt  time.Time `db:"joined_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type memberWithUserTableModel struct {
	memberTableModel
	Username string `db:"username"`
}

type memberInsertModel struct {
	GroupID  string    `db:"group_id"`
	UserID   string    `db:"user_id"`
	Status   string    `db:"status"`
	JoinedAt time.Time `db:"joined_at"`
}

func (m groupTableModel) toDomain() group.Group {
	return group.Group{
		ID:            m.ID,
		CreatorUserID: m.CreatorUserID,
		Name:          m.Name,
		InviteCode:    m.InviteCode,
		Status:        group.Status(m.Status),
		MaxMembers:    m.MaxMembers,
		Scoring: group.ScoringWeights{
			OnTheNose:         m.ScoreOnTheNose,
			CorrectDifference: m.ScoreCorrectDiff,
			Outcome:           m.ScoreOutcome,
		},
		Nudge: group.NudgeSettings{
			Enabled: m.NudgeEnabled,
			Window:  time.Duration(m.NudgeWindowSeconds) * time.Second,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (m memberTableModel) toDomain() group.Member {
	return group.Member{
		GroupID:   m.GroupID,
		UserID:    m.UserID,
		Status:    group.MemberStatus(m.Status),
		JoinedAt:  m.JoinedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
