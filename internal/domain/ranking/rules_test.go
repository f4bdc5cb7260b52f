package ranking

import "testing"

func TestSortItems_TieBrokenByCorrectScoreCount(t *testing.T) {
	t.Parallel()

	items := []Item{
		{UserID: "u1", Username: "alice", TotalPoints: 10, CorrectScoreCount: 2},
		{UserID: "u2", Username: "bob", TotalPoints: 10, CorrectScoreCount: 3},
		{UserID: "u3", Username: "carol", TotalPoints: 7, CorrectScoreCount: 1},
	}

	SortItems(items)
	AssignRanks(items)

	if items[0].UserID != "u2" || items[0].Rank != 1 {
		t.Fatalf("expected u2 at rank 1, got %+v", items[0])
	}
	if items[1].UserID != "u1" || items[1].Rank != 2 {
		t.Fatalf("expected u1 at rank 2, got %+v", items[1])
	}
	if items[2].UserID != "u3" || items[2].Rank != 3 {
		t.Fatalf("expected u3 at rank 3, got %+v", items[2])
	}
}

func TestAssignRanks_GapAfterTie(t *testing.T) {
	t.Parallel()

	items := []Item{
		{UserID: "u1", Username: "alice", TotalPoints: 10, CorrectScoreCount: 1},
		{UserID: "u2", Username: "bob", TotalPoints: 10, CorrectScoreCount: 1},
		{UserID: "u3", Username: "carol", TotalPoints: 5},
	}

	SortItems(items)
	AssignRanks(items)

	got := []int{items[0].Rank, items[1].Rank, items[2].Rank}
	want := []int{1, 1, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected ranks %v, got %v", want, got)
		}
	}
}

func TestSortItems_UsernameTieBreakIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	items := []Item{
		{UserID: "u1", Username: "Zoe"},
		{UserID: "u2", Username: "adam"},
		{UserID: "u3", Username: "Bea"},
	}

	SortItems(items)

	order := []string{items[0].Username, items[1].Username, items[2].Username}
	want := []string{"adam", "Bea", "Zoe"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected username order %v, got %v", want, order)
		}
	}
}

func TestAssignRanks_OutcomeCountDoesNotSplitTies(t *testing.T) {
	t.Parallel()

	items := []Item{
		{UserID: "u1", Username: "alice", TotalPoints: 8, CorrectScoreCount: 2, CorrectOutcomeCount: 5},
		{UserID: "u2", Username: "bob", TotalPoints: 8, CorrectScoreCount: 2, CorrectOutcomeCount: 1},
	}

	SortItems(items)
	AssignRanks(items)

	if items[0].Rank != 1 || items[1].Rank != 1 {
		t.Fatalf("expected shared rank 1, got %d and %d", items[0].Rank, items[1].Rank)
	}
	if items[0].Username != "alice" {
		t.Fatalf("expected username tie-break order, got %q first", items[0].Username)
	}
}
