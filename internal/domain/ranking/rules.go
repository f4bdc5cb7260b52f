package ranking

import (
	"sort"
	"strings"
)

// SortItems orders items for a competitive ranking: total points
// descending, then correct-score count descending, then username
// ascending case-insensitively so fully tied members come out in a
// deterministic order. Correct-outcome count deliberately plays no part
// in the tie-break.
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].TotalPoints != items[j].TotalPoints {
			return items[i].TotalPoints > items[j].TotalPoints
		}
		if items[i].CorrectScoreCount != items[j].CorrectScoreCount {
			return items[i].CorrectScoreCount > items[j].CorrectScoreCount
		}
		return strings.ToLower(items[i].Username) < strings.ToLower(items[j].Username)
	})
}

// AssignRanks applies competition ("1224") ranking to a sorted slice:
// members tied on (totalPoints, correctScoreCount) share a rank, and the
// next distinct member resumes at their list position, leaving a gap the
// size of the tie.
func AssignRanks(items []Item) {
	for idx := range items {
		if idx == 0 {
			items[idx].Rank = 1
			continue
		}
		prev := items[idx-1]
		if items[idx].TotalPoints == prev.TotalPoints && items[idx].CorrectScoreCount == prev.CorrectScoreCount {
			items[idx].Rank = prev.Rank
			continue
		}
		items[idx].Rank = idx + 1
	}
}
