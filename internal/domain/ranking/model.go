package ranking

// Item is one row of a group's competitive ranking. Rankings are a
// derived view recomputed from raw predictions on read, never stored as
// their own source of truth.
type Item struct {
	UserID              string
	Username            string
	TotalPoints         int
	PredictionCount     int
	CorrectScoreCount   int
	CorrectOutcomeCount int
	Rank                int
	Nudge               *Hint
}

// Hint marks the single actionable nudge target for a member: the
// earliest in-window fixture they have not predicted. Nil when the member
// is not nudgeable.
type Hint struct {
	FixtureID  string
	NudgedByMe bool
}
