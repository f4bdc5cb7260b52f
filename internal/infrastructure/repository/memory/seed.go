package memory

import (
	"time"

	"github.com/febriansr/prediction-league/internal/domain/fixture"
	"github.com/febriansr/prediction-league/internal/domain/user"
)

const (
	FixtureIDUpcomingDerby    = "fx-derby-upcoming"
	FixtureIDUpcomingClassic  = "fx-classic-upcoming"
	FixtureIDFinishedOpener   = "fx-opener-finished"
	FixtureIDDistantFriendly  = "fx-friendly-distant"
	FixtureIDPostponedFixture = "fx-postponed"
)

func intPtr(v int) *int {
	return &v
}

// SeedFixtures returns a small pool of fixtures around the given
// reference time: two inside a day, one already settled, one far out,
// one postponed.
func SeedFixtures(now time.Time) []fixture.Fixture {
	return []fixture.Fixture{
		{
			ID:        FixtureIDUpcomingDerby,
			HomeTeam:  "Persija Jakarta",
			AwayTeam:  "Persib Bandung",
			KickoffAt: now.Add(6 * time.Hour),
			State:     fixture.StateNotStarted,
		},
		{
			ID:        FixtureIDUpcomingClassic,
			HomeTeam:  "Arsenal",
			AwayTeam:  "Liverpool",
			KickoffAt: now.Add(20 * time.Hour),
			State:     fixture.StateNotStarted,
		},
		{
			ID:        FixtureIDFinishedOpener,
			HomeTeam:  "Bali United",
			AwayTeam:  "Persebaya Surabaya",
			KickoffAt: now.Add(-48 * time.Hour),
			State:     fixture.StateFinished,
			HomeScore: intPtr(2),
			AwayScore: intPtr(1),
		},
		{
			ID:        FixtureIDDistantFriendly,
			HomeTeam:  "PSM Makassar",
			AwayTeam:  "Arema FC",
			KickoffAt: now.Add(10 * 24 * time.Hour),
			State:     fixture.StateNotStarted,
		},
		{
			ID:        FixtureIDPostponedFixture,
			HomeTeam:  "Persita Tangerang",
			AwayTeam:  "Dewa United",
			KickoffAt: now.Add(-2 * time.Hour),
			State:     fixture.StatePostponed,
		},
	}
}

func SeedUsers() []user.Principal {
	return []user.Principal{
		{UserID: "user-1", Username: "andi", Email: "andi@example.com"},
		{UserID: "user-2", Username: "Budi", Email: "budi@example.com"},
		{UserID: "user-3", Username: "citra", Email: "citra@example.com"},
	}
}
