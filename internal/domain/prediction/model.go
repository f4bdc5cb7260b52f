package prediction

import "time"

// Score is a predicted final score pair. Stored encoded as "<home>:<away>".
type Score struct {
	Home int
	Away int
}

// Prediction is one member's score guess for one GroupFixture. PlacedAt is
// the first-write time and never moves; UpdatedAt advances on every
// pre-kickoff resubmission. Points stays nil until the external settlement
// process writes it together with SettledAt.
type Prediction struct {
	ID             string
	GroupID        string
	GroupFixtureID string
	FixtureID      string
	UserID         string
	Score          Score
	PlacedAt       time.Time
	UpdatedAt      time.Time
	SettledAt      *time.Time
	Points         *string
}

func (p Prediction) IsSettled() bool {
	return p.SettledAt != nil
}

// UserPointsSum is one row of the store-side points aggregate for a group,
// restricted to joined members.
type UserPointsSum struct {
	UserID      string
	TotalPoints int
}
