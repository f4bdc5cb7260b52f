package nudge

import (
	"errors"
	"time"
)

// ErrDuplicateEvent is returned by stores when the (group, fixture,
// nudger, target) tuple already exists. Duplicate sends are rejected,
// never merged.
var ErrDuplicateEvent = errors.New("duplicate nudge event")

// Event records that one member reminded another to predict a fixture.
type Event struct {
	ID           string
	GroupID      string
	FixtureID    string
	NudgerUserID string
	TargetUserID string
	CreatedAt    time.Time
}
