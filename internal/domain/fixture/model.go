package fixture

import (
	"strings"
	"time"
)

const (
	StateNotStarted     = "NS"
	StateToBeDetermined = "TBD"
	StatePostponed      = "PST"
	StateCancelled      = "CANC"
	StateSuspended      = "SUSP"
	StateAwaiting       = "AWAITING"
	StateFinished       = "FT"
)

// Fixture is an external, read-only sporting event. Its lifecycle state
// and result are maintained by an upstream sync, never by this service.
type Fixture struct {
	ID        string
	HomeTeam  string
	AwayTeam  string
	KickoffAt time.Time
	State     string
	HomeScore *int
	AwayScore *int
}

func (f Fixture) HasResult() bool {
	return f.HomeScore != nil && f.AwayScore != nil
}

func NormalizeState(value string) string {
	state := strings.ToUpper(strings.TrimSpace(value))
	if state == "" {
		return StateNotStarted
	}
	return state
}

// IsPendingState reports whether the state means the match is not
// actually playing yet, regardless of the scheduled kickoff time.
func IsPendingState(state string) bool {
	switch NormalizeState(state) {
	case StateNotStarted, StateToBeDetermined, StatePostponed, StateCancelled, StateSuspended, StateAwaiting:
		return true
	default:
		return false
	}
}

// HasStarted reports whether a fixture is closed for prediction. A fixture
// has started once it carries a settled result, or once its kickoff is in
// the past and its state says the match is actually underway. Callers must
// re-derive this at the moment of each write: a fixture can go live between
// a client's read and its write.
func HasStarted(f Fixture, now time.Time) bool {
	if f.HasResult() {
		return true
	}
	if f.KickoffAt.After(now) {
		return false
	}
	return !IsPendingState(f.State)
}

// GroupFixture attaches a Fixture to a group's prediction pool. Immutable
// once created except for removal before kickoff.
type GroupFixture struct {
	ID        string
	GroupID   string
	FixtureID string
	AddedAt   time.Time
}

// PoolEntry is a GroupFixture joined with its Fixture row.
type PoolEntry struct {
	GroupFixture GroupFixture
	Fixture      Fixture
}
