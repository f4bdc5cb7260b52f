package group

import "time"

type Status string

const (
	StatusDraft  Status = "draft"
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// CanTransition reports whether a group status change is allowed.
// Transitions are monotonic: draft -> active -> ended, no way back.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusActive
	case StatusActive:
		return to == StatusEnded
	default:
		return false
	}
}

// ScoringWeights are the per-group points awarded at settlement.
type ScoringWeights struct {
	OnTheNose         int
	CorrectDifference int
	Outcome           int
}

func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		OnTheNose:         5,
		CorrectDifference: 3,
		Outcome:           1,
	}
}

type NudgeSettings struct {
	Enabled bool
	Window  time.Duration
}

type Group struct {
	ID            string
	CreatorUserID string
	Name          string
	InviteCode    string
	Status        Status
	MaxMembers    int
	Scoring       ScoringWeights
	Nudge         NudgeSettings
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type MemberStatus string

const (
	MemberStatusJoined MemberStatus = "joined"
	MemberStatusLeft   MemberStatus = "left"
)

// Member is the (group, user) pair. Leaving flips the status; rows are
// never hard-deleted while the member's predictions exist.
type Member struct {
	GroupID   string
	UserID    string
	Status    MemberStatus
	JoinedAt  time.Time
	UpdatedAt time.Time
}

func (m Member) IsJoined() bool {
	return m.Status == MemberStatusJoined
}

type MemberWithUser struct {
	Member
	Username string
}
