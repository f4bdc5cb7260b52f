package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/febriansr/prediction-league/internal/domain/fixture"
	"github.com/febriansr/prediction-league/internal/domain/group"
	"github.com/febriansr/prediction-league/internal/infrastructure/repository/memory"
)

type sequenceIDGenerator struct {
	mu   sync.Mutex
	next int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.next++
	return fmt.Sprintf("id-%03d", g.next), nil
}

type recordingInvalidator struct {
	mu     sync.Mutex
	groups []string
}

func (r *recordingInvalidator) Invalidate(groupIDs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.groups = append(r.groups, groupIDs...)
}

func (r *recordingInvalidator) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.groups...)
}

type predictionFixture struct {
	groupRepo      *memory.GroupRepository
	fixtureRepo    *memory.FixtureRepository
	predictionRepo *memory.PredictionRepository
	invalidator    *recordingInvalidator
	service        *PredictionService
	now            time.Time
}

const testGroupID = "group-1"

func seededClock() time.Time {
	return time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
}

func newPredictionFixture(t *testing.T) *predictionFixture {
	t.Helper()

	now := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	users := memory.NewUserRepository(memory.SeedUsers())
	groupRepo := memory.NewGroupRepository(users)
	fixtureRepo := memory.NewFixtureRepository(memory.SeedFixtures(now))
	predictionRepo := memory.NewPredictionRepository()
	invalidator := &recordingInvalidator{}

	service := NewPredictionService(groupRepo, fixtureRepo, predictionRepo, invalidator, &sequenceIDGenerator{})
	service.now = func() time.Time { return now }

	seedGroupWithMembers(t, groupRepo, now)
	attachPoolFixtures(t, fixtureRepo, now)

	return &predictionFixture{
		groupRepo:      groupRepo,
		fixtureRepo:    fixtureRepo,
		predictionRepo: predictionRepo,
		invalidator:    invalidator,
		service:        service,
		now:            now,
	}
}

func seedGroupWithMembers(t *testing.T, repo *memory.GroupRepository, now time.Time) {
	t.Helper()

	g := group.Group{
		ID:            testGroupID,
		CreatorUserID: "user-1",
		Name:          "Weekend Office Pool",
		InviteCode:    "POOL2026",
		Status:        group.StatusActive,
		MaxMembers:    10,
		Scoring:       group.DefaultScoringWeights(),
		Nudge:         group.NudgeSettings{Enabled: true, Window: 24 * time.Hour},
		CreatedAt:     now.Add(-72 * time.Hour),
		UpdatedAt:     now.Add(-72 * time.Hour),
	}
	if err := repo.CreateGroup(context.Background(), g); err != nil {
		t.Fatalf("seed group: %v", err)
	}
	for _, userID := range []string{"user-1", "user-2", "user-3"} {
		member := group.Member{
			GroupID:   testGroupID,
			UserID:    userID,
			Status:    group.MemberStatusJoined,
			JoinedAt:  now.Add(-72 * time.Hour),
			UpdatedAt: now.Add(-72 * time.Hour),
		}
		if err := repo.UpsertMember(context.Background(), member); err != nil {
			t.Fatalf("seed member %s: %v", userID, err)
		}
	}
}

func attachPoolFixtures(t *testing.T, repo *memory.FixtureRepository, now time.Time) {
	t.Helper()

	for idx, fixtureID := range []string{
		memory.FixtureIDUpcomingDerby,
		memory.FixtureIDUpcomingClassic,
		memory.FixtureIDFinishedOpener,
		memory.FixtureIDDistantFriendly,
	} {
		gf := fixture.GroupFixture{
			ID:        fmt.Sprintf("gf-%03d", idx+1),
			GroupID:   testGroupID,
			FixtureID: fixtureID,
			AddedAt:   now.Add(-48 * time.Hour),
		}
		if err := repo.AttachFixture(context.Background(), gf); err != nil {
			t.Fatalf("seed group fixture %s: %v", fixtureID, err)
		}
	}
}

func TestPredictionService_Submit_CreateThenResubmit(t *testing.T) {
	t.Parallel()

	f := newPredictionFixture(t)

	created, err := f.service.Submit(context.Background(), SubmitPredictionInput{
		UserID:    "user-2",
		GroupID:   testGroupID,
		FixtureID: memory.FixtureIDUpcomingDerby,
		Home:      2,
		Away:      1,
	})
	if err != nil {
		t.Fatalf("submit create: %v", err)
	}
	if created.Score.Home != 2 || created.Score.Away != 1 {
		t.Fatalf("unexpected created score: %+v", created.Score)
	}

	later := f.now.Add(30 * time.Minute)
	f.service.now = func() time.Time { return later }

	updated, err := f.service.Submit(context.Background(), SubmitPredictionInput{
		UserID:    "user-2",
		GroupID:   testGroupID,
		FixtureID: memory.FixtureIDUpcomingDerby,
		Home:      0,
		Away:      0,
	})
	if err != nil {
		t.Fatalf("submit resubmit: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("expected same prediction id on resubmit, got %s vs %s", updated.ID, created.ID)
	}
	if !updated.PlacedAt.Equal(created.PlacedAt) {
		t.Fatalf("expected placed_at unchanged, got %v vs %v", updated.PlacedAt, created.PlacedAt)
	}
	if !updated.UpdatedAt.Equal(later) {
		t.Fatalf("expected updated_at %v, got %v", later, updated.UpdatedAt)
	}
	if updated.Score.Home != 0 || updated.Score.Away != 0 {
		t.Fatalf("unexpected score after resubmit: %+v", updated.Score)
	}

	calls := f.invalidator.calls()
	if len(calls) != 2 || calls[0] != testGroupID || calls[1] != testGroupID {
		t.Fatalf("expected two invalidations for %s, got %+v", testGroupID, calls)
	}
}

func TestPredictionService_Submit_PreconditionOrder(t *testing.T) {
	t.Parallel()

	f := newPredictionFixture(t)

	t.Run("unknown group", func(t *testing.T) {
		_, err := f.service.Submit(context.Background(), SubmitPredictionInput{
			UserID:    "user-2",
			GroupID:   "missing-group",
			FixtureID: memory.FixtureIDUpcomingDerby,
			Home:      1,
			Away:      1,
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("non member", func(t *testing.T) {
		_, err := f.service.Submit(context.Background(), SubmitPredictionInput{
			UserID:    "stranger",
			GroupID:   testGroupID,
			FixtureID: memory.FixtureIDUpcomingDerby,
			Home:      1,
			Away:      1,
		})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("score out of range beats pool check", func(t *testing.T) {
		// The fixture is unknown, but the score is checked first.
		_, err := f.service.Submit(context.Background(), SubmitPredictionInput{
			UserID:    "user-2",
			GroupID:   testGroupID,
			FixtureID: "missing-fixture",
			Home:      10,
			Away:      0,
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("fixture not in pool", func(t *testing.T) {
		_, err := f.service.Submit(context.Background(), SubmitPredictionInput{
			UserID:    "user-2",
			GroupID:   testGroupID,
			FixtureID: "missing-fixture",
			Home:      1,
			Away:      1,
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("match already started", func(t *testing.T) {
		_, err := f.service.Submit(context.Background(), SubmitPredictionInput{
			UserID:    "user-2",
			GroupID:   testGroupID,
			FixtureID: memory.FixtureIDFinishedOpener,
			Home:      1,
			Away:      1,
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	if len(f.invalidator.calls()) != 0 {
		t.Fatalf("expected no invalidations for rejected submissions")
	}
}

func TestPredictionService_Submit_KickoffCutoffReDerived(t *testing.T) {
	t.Parallel()

	f := newPredictionFixture(t)

	// Move the clock past the derby kickoff and flip the state to live.
	f.fixtureRepo.UpsertFixture(fixture.Fixture{
		ID:        memory.FixtureIDUpcomingDerby,
		HomeTeam:  "Persija Jakarta",
		AwayTeam:  "Persib Bandung",
		KickoffAt: f.now.Add(-5 * time.Minute),
		State:     "1H",
	})

	_, err := f.service.Submit(context.Background(), SubmitPredictionInput{
		UserID:    "user-2",
		GroupID:   testGroupID,
		FixtureID: memory.FixtureIDUpcomingDerby,
		Home:      1,
		Away:      0,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for live fixture, got %v", err)
	}
}

func TestPredictionService_SubmitBatch_PartialSuccess(t *testing.T) {
	t.Parallel()

	f := newPredictionFixture(t)

	result, err := f.service.SubmitBatch(context.Background(), SubmitPredictionBatchInput{
		UserID:  "user-3",
		GroupID: testGroupID,
		Items: []BatchPredictionItem{
			{FixtureID: memory.FixtureIDUpcomingDerby, Home: 2, Away: 0},
			{FixtureID: memory.FixtureIDFinishedOpener, Home: 1, Away: 1},
			{FixtureID: memory.FixtureIDUpcomingClassic, Home: 3, Away: 2},
		},
	})
	if err != nil {
		t.Fatalf("submit batch: %v", err)
	}

	if len(result.Accepted) != 2 {
		t.Fatalf("expected 2 accepted items, got %d", len(result.Accepted))
	}
	if len(result.Rejected) != 1 {
		t.Fatalf("expected 1 rejected item, got %d", len(result.Rejected))
	}
	if result.Rejected[0].FixtureID != memory.FixtureIDFinishedOpener {
		t.Fatalf("unexpected rejected fixture: %s", result.Rejected[0].FixtureID)
	}
	if result.Rejected[0].Reason != BatchRejectReasonMatchStarted {
		t.Fatalf("unexpected rejection reason: %s", result.Rejected[0].Reason)
	}

	persisted, err := f.predictionRepo.ListByGroupAndUser(context.Background(), testGroupID, "user-3")
	if err != nil {
		t.Fatalf("list predictions: %v", err)
	}
	if len(persisted) != 2 {
		t.Fatalf("expected 2 persisted predictions, got %d", len(persisted))
	}

	if calls := f.invalidator.calls(); len(calls) != 1 || calls[0] != testGroupID {
		t.Fatalf("expected one invalidation, got %+v", calls)
	}
}

func TestPredictionService_SubmitBatch_ResubmitKeepsPlacedAt(t *testing.T) {
	t.Parallel()

	f := newPredictionFixture(t)

	first, err := f.service.SubmitBatch(context.Background(), SubmitPredictionBatchInput{
		UserID:  "user-2",
		GroupID: testGroupID,
		Items: []BatchPredictionItem{
			{FixtureID: memory.FixtureIDUpcomingDerby, Home: 2, Away: 0},
		},
	})
	if err != nil {
		t.Fatalf("submit batch create: %v", err)
	}
	if len(first.Accepted) != 1 {
		t.Fatalf("expected 1 accepted item, got %d", len(first.Accepted))
	}

	later := f.now.Add(45 * time.Minute)
	f.service.now = func() time.Time { return later }

	second, err := f.service.SubmitBatch(context.Background(), SubmitPredictionBatchInput{
		UserID:  "user-2",
		GroupID: testGroupID,
		Items: []BatchPredictionItem{
			{FixtureID: memory.FixtureIDUpcomingDerby, Home: 0, Away: 3},
		},
	})
	if err != nil {
		t.Fatalf("submit batch resubmit: %v", err)
	}
	if len(second.Accepted) != 1 {
		t.Fatalf("expected 1 accepted item, got %d", len(second.Accepted))
	}

	got := second.Accepted[0]
	if got.ID != first.Accepted[0].ID {
		t.Fatalf("expected same prediction id on resubmit, got %s vs %s", got.ID, first.Accepted[0].ID)
	}
	if !got.PlacedAt.Equal(first.Accepted[0].PlacedAt) {
		t.Fatalf("expected placed_at unchanged, got %v vs %v", got.PlacedAt, first.Accepted[0].PlacedAt)
	}
	if !got.UpdatedAt.Equal(later) {
		t.Fatalf("expected updated_at %v, got %v", later, got.UpdatedAt)
	}
	if got.Score.Home != 0 || got.Score.Away != 3 {
		t.Fatalf("unexpected score after resubmit: %+v", got.Score)
	}
}

func TestPredictionService_SubmitBatch_UnknownFixtureFailsWholeBatch(t *testing.T) {
	t.Parallel()

	f := newPredictionFixture(t)

	_, err := f.service.SubmitBatch(context.Background(), SubmitPredictionBatchInput{
		UserID:  "user-2",
		GroupID: testGroupID,
		Items: []BatchPredictionItem{
			{FixtureID: memory.FixtureIDUpcomingDerby, Home: 1, Away: 0},
			{FixtureID: "missing-fixture", Home: 1, Away: 1},
		},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	persisted, err := f.predictionRepo.ListByGroupAndUser(context.Background(), testGroupID, "user-2")
	if err != nil {
		t.Fatalf("list predictions: %v", err)
	}
	if len(persisted) != 0 {
		t.Fatalf("expected no persisted predictions, got %d", len(persisted))
	}
	if len(f.invalidator.calls()) != 0 {
		t.Fatalf("expected no invalidation for failed batch")
	}
}

func TestPredictionService_SubmitBatch_AllStartedWritesNothing(t *testing.T) {
	t.Parallel()

	f := newPredictionFixture(t)

	result, err := f.service.SubmitBatch(context.Background(), SubmitPredictionBatchInput{
		UserID:  "user-2",
		GroupID: testGroupID,
		Items: []BatchPredictionItem{
			{FixtureID: memory.FixtureIDFinishedOpener, Home: 2, Away: 1},
		},
	})
	if err != nil {
		t.Fatalf("submit batch: %v", err)
	}
	if len(result.Accepted) != 0 {
		t.Fatalf("expected no accepted items, got %d", len(result.Accepted))
	}
	if len(result.Rejected) != 1 {
		t.Fatalf("expected 1 rejected item, got %d", len(result.Rejected))
	}

	persisted, err := f.predictionRepo.ListByGroup(context.Background(), testGroupID)
	if err != nil {
		t.Fatalf("list predictions: %v", err)
	}
	if len(persisted) != 0 {
		t.Fatalf("expected no persisted predictions, got %d", len(persisted))
	}
	if len(f.invalidator.calls()) != 0 {
		t.Fatalf("expected no invalidation when every item was dropped")
	}
}
