package fixture

import (
	"testing"
	"time"
)

func TestHasStarted(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC)
	goals := 2

	tests := []struct {
		name string
		f    Fixture
		want bool
	}{
		{
			name: "future kickoff not started",
			f:    Fixture{KickoffAt: now.Add(time.Hour), State: StateNotStarted},
			want: false,
		},
		{
			name: "past kickoff but still NS",
			f:    Fixture{KickoffAt: now.Add(-10 * time.Minute), State: StateNotStarted},
			want: false,
		},
		{
			name: "past kickoff postponed",
			f:    Fixture{KickoffAt: now.Add(-time.Hour), State: StatePostponed},
			want: false,
		},
		{
			name: "past kickoff cancelled",
			f:    Fixture{KickoffAt: now.Add(-time.Hour), State: StateCancelled},
			want: false,
		},
		{
			name: "past kickoff awaiting",
			f:    Fixture{KickoffAt: now.Add(-time.Hour), State: StateAwaiting},
			want: false,
		},
		{
			name: "past kickoff live",
			f:    Fixture{KickoffAt: now.Add(-10 * time.Minute), State: "1H"},
			want: true,
		},
		{
			name: "future kickoff live state",
			f:    Fixture{KickoffAt: now.Add(time.Hour), State: "1H"},
			want: false,
		},
		{
			name: "settled result wins regardless of state",
			f: Fixture{
				KickoffAt: now.Add(-2 * time.Hour),
				State:     StateNotStarted,
				HomeScore: &goals,
				AwayScore: &goals,
			},
			want: true,
		},
		{
			name: "kickoff exactly now still open",
			f:    Fixture{KickoffAt: now, State: StateNotStarted},
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HasStarted(tt.f, now); got != tt.want {
				t.Fatalf("HasStarted(%+v) = %t, want %t", tt.f, got, tt.want)
			}
		})
	}
}

func TestIsPendingState(t *testing.T) {
	t.Parallel()

	for _, state := range []string{"NS", "tbd", " PST ", "CANC", "SUSP", "AWAITING", "awaiting", ""} {
		if !IsPendingState(state) {
			t.Fatalf("expected %q to count as pending", state)
		}
	}
	for _, state := range []string{"1H", "HT", "2H", "ET", "FT", "AET", "LIVE"} {
		if IsPendingState(state) {
			t.Fatalf("expected %q to count as playing", state)
		}
	}
}
