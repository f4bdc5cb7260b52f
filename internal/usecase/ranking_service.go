package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/febriansr/prediction-league/internal/domain/fixture"
	"github.com/febriansr/prediction-league/internal/domain/group"
	"github.com/febriansr/prediction-league/internal/domain/nudge"
	"github.com/febriansr/prediction-league/internal/domain/prediction"
	"github.com/febriansr/prediction-league/internal/domain/ranking"
	"github.com/febriansr/prediction-league/internal/platform/scoreline"
)

const rankingCacheKeyPrefix = "ranking:group:"

// RankingCacheKey builds the cache key for a group's ranking snapshot.
// Invalidation deletes by the shared prefix.
func RankingCacheKey(groupID string) string {
	return rankingCacheKeyPrefix + groupID
}

// RankingCachePrefix is the key prefix shared by all ranking snapshots.
func RankingCachePrefix() string {
	return rankingCacheKeyPrefix
}

// RankingSnapshotStore caches computed ranking snapshots. Loads are
// deduplicated by the store so concurrent readers of a cold group share
// one computation.
type RankingSnapshotStore interface {
	GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error)
}

// nudgeCandidate is a pool fixture a member has not predicted yet,
// kept in the snapshot so the time-dependent nudge window can be applied
// per request without recomputing the whole ranking.
type nudgeCandidate struct {
	FixtureID string
	KickoffAt time.Time
}

type rankingSnapshot struct {
	Items      []ranking.Item
	Candidates map[string][]nudgeCandidate
}

type RankingService struct {
	groupRepo      group.Repository
	fixtureRepo    fixture.Repository
	predictionRepo prediction.Repository
	nudgeRepo      nudge.Repository
	snapshots      RankingSnapshotStore
	defaultWindow  time.Duration
	now            func() time.Time
}

func NewRankingService(
	groupRepo group.Repository,
	fixtureRepo fixture.Repository,
	predictionRepo prediction.Repository,
	nudgeRepo nudge.Repository,
	snapshots RankingSnapshotStore,
	defaultWindow time.Duration,
) *RankingService {
	return &RankingService{
		groupRepo:      groupRepo,
		fixtureRepo:    fixtureRepo,
		predictionRepo: predictionRepo,
		nudgeRepo:      nudgeRepo,
		snapshots:      snapshots,
		defaultWindow:  defaultWindow,
		now:            time.Now,
	}
}

// GetRanking returns the group's ranking as seen by the caller. The
// sorted totals are served from the snapshot cache; the nudge hints
// depend on the caller and the clock, so they are layered on top of the
// snapshot for every request.
func (s *RankingService) GetRanking(ctx context.Context, userID, groupID string) ([]ranking.Item, error) {
	userID = strings.TrimSpace(userID)
	groupID = strings.TrimSpace(groupID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if groupID == "" {
		return nil, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.GetRanking")
	defer span.End()

	g, err := requireJoinedMember(ctx, s.groupRepo, groupID, userID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.loadSnapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}

	items := make([]ranking.Item, len(snapshot.Items))
	copy(items, snapshot.Items)

	if g.Nudge.Enabled {
		if err := s.applyNudgeHints(ctx, g, userID, items, snapshot.Candidates); err != nil {
			return nil, err
		}
	}

	return items, nil
}

func (s *RankingService) loadSnapshot(ctx context.Context, groupID string) (rankingSnapshot, error) {
	if s.snapshots == nil {
		return s.computeSnapshot(ctx, groupID)
	}

	value, err := s.snapshots.GetOrLoad(ctx, RankingCacheKey(groupID), func(ctx context.Context) (any, error) {
		return s.computeSnapshot(ctx, groupID)
	})
	if err != nil {
		return rankingSnapshot{}, err
	}

	snapshot, ok := value.(rankingSnapshot)
	if !ok {
		return s.computeSnapshot(ctx, groupID)
	}
	return snapshot, nil
}

// computeSnapshot rebuilds a group's ranking from raw rows. The three
// source reads are independent and run concurrently; they are plain
// reads outside any transaction, so a prediction landing mid-read can
// shift a total by at most one in-flight write.
func (s *RankingService) computeSnapshot(ctx context.Context, groupID string) (rankingSnapshot, error) {
	var (
		members     []group.MemberWithUser
		poolEntries []fixture.PoolEntry
		predictions []prediction.Prediction
	)

	readers := pool.New().WithContext(ctx).WithCancelOnError()
	readers.Go(func(ctx context.Context) error {
		var err error
		members, err = s.groupRepo.ListMembersWithUsers(ctx, groupID)
		if err != nil {
			return fmt.Errorf("list group members: %w", err)
		}
		return nil
	})
	readers.Go(func(ctx context.Context) error {
		var err error
		poolEntries, err = s.fixtureRepo.ListPoolByGroup(ctx, groupID)
		if err != nil {
			return fmt.Errorf("list group fixtures: %w", err)
		}
		return nil
	})
	readers.Go(func(ctx context.Context) error {
		var err error
		predictions, err = s.predictionRepo.ListByGroup(ctx, groupID)
		if err != nil {
			return fmt.Errorf("list group predictions: %w", err)
		}
		return nil
	})
	if err := readers.Wait(); err != nil {
		return rankingSnapshot{}, err
	}

	fixtureByID := make(map[string]fixture.Fixture, len(poolEntries))
	for _, entry := range poolEntries {
		fixtureByID[entry.Fixture.ID] = entry.Fixture
	}

	// Every joined member gets a row, predictions or not.
	itemByUserID := make(map[string]*ranking.Item, len(members))
	items := make([]ranking.Item, 0, len(members))
	for _, member := range members {
		if !member.IsJoined() {
			continue
		}
		items = append(items, ranking.Item{
			UserID:   member.UserID,
			Username: member.Username,
		})
	}
	for idx := range items {
		itemByUserID[items[idx].UserID] = &items[idx]
	}

	predictedByUser := make(map[string]map[string]struct{}, len(members))
	for _, p := range predictions {
		if _, ok := predictedByUser[p.UserID]; !ok {
			predictedByUser[p.UserID] = make(map[string]struct{})
		}
		predictedByUser[p.UserID][p.FixtureID] = struct{}{}

		item, ok := itemByUserID[p.UserID]
		if !ok {
			continue
		}
		item.PredictionCount++
		if p.Points != nil {
			item.TotalPoints += scoreline.ParsePoints(*p.Points)
		}

		f, ok := fixtureByID[p.FixtureID]
		if !ok || !f.HasResult() {
			continue
		}
		if p.Score.Home == *f.HomeScore && p.Score.Away == *f.AwayScore {
			item.CorrectScoreCount++
		}
		if scoreline.ScoreOutcome(p.Score.Home, p.Score.Away) == scoreline.ScoreOutcome(*f.HomeScore, *f.AwayScore) {
			item.CorrectOutcomeCount++
		}
	}

	ranking.SortItems(items)
	ranking.AssignRanks(items)

	candidates := make(map[string][]nudgeCandidate, len(items))
	for _, item := range items {
		predicted := predictedByUser[item.UserID]
		var open []nudgeCandidate
		for _, entry := range poolEntries {
			if fixture.NormalizeState(entry.Fixture.State) != fixture.StateNotStarted {
				continue
			}
			if _, ok := predicted[entry.Fixture.ID]; ok {
				continue
			}
			open = append(open, nudgeCandidate{
				FixtureID: entry.Fixture.ID,
				KickoffAt: entry.Fixture.KickoffAt,
			})
		}
		sort.Slice(open, func(i, j int) bool {
			return open[i].KickoffAt.Before(open[j].KickoffAt)
		})
		if len(open) > 0 {
			candidates[item.UserID] = open
		}
	}

	return rankingSnapshot{Items: items, Candidates: candidates}, nil
}

// applyNudgeHints marks, for each other member, the earliest unpredicted
// fixture whose kickoff falls inside [now, now+window]. The upper bound
// is inclusive.
func (s *RankingService) applyNudgeHints(ctx context.Context, g group.Group, callerID string, items []ranking.Item, candidates map[string][]nudgeCandidate) error {
	window := g.Nudge.Window
	if window <= 0 {
		window = s.defaultWindow
	}
	now := s.now().UTC()
	deadline := now.Add(window)

	sent, err := s.nudgeRepo.ListByNudgerInGroup(ctx, g.ID, callerID)
	if err != nil {
		return fmt.Errorf("list nudges by nudger: %w", err)
	}
	sentKeys := make(map[string]struct{}, len(sent))
	for _, event := range sent {
		sentKeys[event.TargetUserID+"\x00"+event.FixtureID] = struct{}{}
	}

	for idx := range items {
		if items[idx].UserID == callerID {
			continue
		}
		for _, candidate := range candidates[items[idx].UserID] {
			if candidate.KickoffAt.Before(now) || candidate.KickoffAt.After(deadline) {
				continue
			}
			_, nudged := sentKeys[items[idx].UserID+"\x00"+candidate.FixtureID]
			items[idx].Nudge = &ranking.Hint{
				FixtureID:  candidate.FixtureID,
				NudgedByMe: nudged,
			}
			break
		}
	}

	return nil
}
