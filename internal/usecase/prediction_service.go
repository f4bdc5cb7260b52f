package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/febriansr/prediction-league/internal/domain/fixture"
	"github.com/febriansr/prediction-league/internal/domain/group"
	"github.com/febriansr/prediction-league/internal/domain/prediction"
	idgen "github.com/febriansr/prediction-league/internal/platform/id"
)

const (
	minScoreValue = 0
	maxScoreValue = 9
)

// BatchRejectReasonMatchStarted marks a batch item skipped because its
// fixture went live. It is the only per-item rejection: every other
// precondition failure fails the whole batch.
const BatchRejectReasonMatchStarted = "match_started"

// RankingInvalidator drops cached ranking snapshots after a successful
// prediction write. Implementations run asynchronously; callers never
// wait on or observe invalidation failures.
type RankingInvalidator interface {
	Invalidate(groupIDs ...string)
}

type SubmitPredictionInput struct {
	UserID    string
	GroupID   string
	FixtureID string
	Home      int
	Away      int
}

type BatchPredictionItem struct {
	FixtureID string
	Home      int
	Away      int
}

type SubmitPredictionBatchInput struct {
	UserID  string
	GroupID string
	Items   []BatchPredictionItem
}

type BatchRejection struct {
	FixtureID string
	Reason    string
}

type SubmitPredictionBatchResult struct {
	Accepted []prediction.Prediction
	Rejected []BatchRejection
}

type PredictionService struct {
	groupRepo      group.Repository
	fixtureRepo    fixture.Repository
	predictionRepo prediction.Repository
	invalidator    RankingInvalidator
	idGen          idgen.Generator
	now            func() time.Time
}

func NewPredictionService(
	groupRepo group.Repository,
	fixtureRepo fixture.Repository,
	predictionRepo prediction.Repository,
	invalidator RankingInvalidator,
	idGen idgen.Generator,
) *PredictionService {
	return &PredictionService{
		groupRepo:      groupRepo,
		fixtureRepo:    fixtureRepo,
		predictionRepo: predictionRepo,
		invalidator:    invalidator,
		idGen:          idGen,
		now:            time.Now,
	}
}

// Submit places or replaces the caller's prediction for one fixture.
// Preconditions are checked in a fixed order so a request that fails
// several of them always reports the same error: membership, score
// bounds, pool membership, kickoff. Kickoff is re-derived against the
// clock on every call since a fixture can go live between a client's
// read and its write.
func (s *PredictionService) Submit(ctx context.Context, input SubmitPredictionInput) (prediction.Prediction, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.GroupID = strings.TrimSpace(input.GroupID)
	input.FixtureID = strings.TrimSpace(input.FixtureID)
	if input.UserID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.GroupID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}
	if input.FixtureID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: fixture id is required", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Submit")
	defer span.End()

	if _, err := requireJoinedMember(ctx, s.groupRepo, input.GroupID, input.UserID); err != nil {
		return prediction.Prediction{}, err
	}

	if err := validateScore(input.Home, input.Away); err != nil {
		return prediction.Prediction{}, err
	}

	entry, exists, err := s.fixtureRepo.GetPoolEntry(ctx, input.GroupID, input.FixtureID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get group fixture: %w", err)
	}
	if !exists {
		return prediction.Prediction{}, fmt.Errorf("%w: fixture is not in this group", ErrNotFound)
	}

	now := s.now().UTC()
	if fixture.HasStarted(entry.Fixture, now) {
		return prediction.Prediction{}, fmt.Errorf("%w: match has already started", ErrInvalidInput)
	}

	predictionID, err := s.idGen.NewID()
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("generate prediction id: %w", err)
	}

	item := prediction.Prediction{
		ID:             predictionID,
		GroupID:        input.GroupID,
		GroupFixtureID: entry.GroupFixture.ID,
		FixtureID:      input.FixtureID,
		UserID:         input.UserID,
		Score:          prediction.Score{Home: input.Home, Away: input.Away},
		PlacedAt:       now,
		UpdatedAt:      now,
	}
	if err := s.predictionRepo.Upsert(ctx, item); err != nil {
		return prediction.Prediction{}, fmt.Errorf("upsert prediction: %w", err)
	}

	// Re-read so resubmissions return the original placed_at.
	persisted, exists, err := s.predictionRepo.GetByUserAndGroupFixture(ctx, input.UserID, entry.GroupFixture.ID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get prediction after upsert: %w", err)
	}
	if !exists {
		persisted = item
	}

	s.invalidator.Invalidate(input.GroupID)

	return persisted, nil
}

// SubmitBatch places predictions for several fixtures at once with
// partial success. An unknown fixture or an out-of-range score fails the
// whole batch; a fixture that has gone live only drops that item. The
// surviving items are written in a single transaction, and nothing at
// all is written when every item was dropped.
func (s *PredictionService) SubmitBatch(ctx context.Context, input SubmitPredictionBatchInput) (SubmitPredictionBatchResult, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.GroupID = strings.TrimSpace(input.GroupID)
	if input.UserID == "" {
		return SubmitPredictionBatchResult{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.GroupID == "" {
		return SubmitPredictionBatchResult{}, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}
	if len(input.Items) == 0 {
		return SubmitPredictionBatchResult{}, fmt.Errorf("%w: at least one prediction is required", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.SubmitBatch")
	defer span.End()

	if _, err := requireJoinedMember(ctx, s.groupRepo, input.GroupID, input.UserID); err != nil {
		return SubmitPredictionBatchResult{}, err
	}

	fixtureIDs := make([]string, 0, len(input.Items))
	for idx := range input.Items {
		input.Items[idx].FixtureID = strings.TrimSpace(input.Items[idx].FixtureID)
		if input.Items[idx].FixtureID == "" {
			return SubmitPredictionBatchResult{}, fmt.Errorf("%w: fixture id is required", ErrInvalidInput)
		}
		if err := validateScore(input.Items[idx].Home, input.Items[idx].Away); err != nil {
			return SubmitPredictionBatchResult{}, fmt.Errorf("fixture=%s: %w", input.Items[idx].FixtureID, err)
		}
		fixtureIDs = append(fixtureIDs, input.Items[idx].FixtureID)
	}

	entries, err := s.fixtureRepo.ListPoolEntriesByFixtureIDs(ctx, input.GroupID, fixtureIDs)
	if err != nil {
		return SubmitPredictionBatchResult{}, fmt.Errorf("list group fixtures: %w", err)
	}
	entryByFixtureID := make(map[string]fixture.PoolEntry, len(entries))
	for _, entry := range entries {
		entryByFixtureID[entry.Fixture.ID] = entry
	}
	for _, fixtureID := range fixtureIDs {
		if _, ok := entryByFixtureID[fixtureID]; !ok {
			return SubmitPredictionBatchResult{}, fmt.Errorf("%w: fixture %s is not in this group", ErrInvalidInput, fixtureID)
		}
	}

	now := s.now().UTC()
	result := SubmitPredictionBatchResult{}
	survivors := make([]prediction.Prediction, 0, len(input.Items))
	for _, item := range input.Items {
		entry := entryByFixtureID[item.FixtureID]
		if fixture.HasStarted(entry.Fixture, now) {
			result.Rejected = append(result.Rejected, BatchRejection{
				FixtureID: item.FixtureID,
				Reason:    BatchRejectReasonMatchStarted,
			})
			continue
		}

		predictionID, err := s.idGen.NewID()
		if err != nil {
			return SubmitPredictionBatchResult{}, fmt.Errorf("generate prediction id: %w", err)
		}
		survivors = append(survivors, prediction.Prediction{
			ID:             predictionID,
			GroupID:        input.GroupID,
			GroupFixtureID: entry.GroupFixture.ID,
			FixtureID:      item.FixtureID,
			UserID:         input.UserID,
			Score:          prediction.Score{Home: item.Home, Away: item.Away},
			PlacedAt:       now,
			UpdatedAt:      now,
		})
	}

	if len(survivors) == 0 {
		return result, nil
	}

	if err := s.predictionRepo.UpsertBatch(ctx, survivors); err != nil {
		return SubmitPredictionBatchResult{}, fmt.Errorf("upsert prediction batch: %w", err)
	}

	// Re-read so resubmissions return the original placed_at.
	stored, err := s.predictionRepo.ListByGroupAndUser(ctx, input.GroupID, input.UserID)
	if err != nil {
		return SubmitPredictionBatchResult{}, fmt.Errorf("list predictions after upsert: %w", err)
	}
	storedByGroupFixture := make(map[string]prediction.Prediction, len(stored))
	for _, p := range stored {
		storedByGroupFixture[p.GroupFixtureID] = p
	}
	for idx := range survivors {
		if p, ok := storedByGroupFixture[survivors[idx].GroupFixtureID]; ok {
			survivors[idx] = p
		}
	}
	result.Accepted = survivors

	s.invalidator.Invalidate(input.GroupID)

	return result, nil
}

// ListMine returns the caller's predictions across the group's pool,
// including settled ones.
func (s *PredictionService) ListMine(ctx context.Context, userID, groupID string) ([]prediction.Prediction, error) {
	userID = strings.TrimSpace(userID)
	groupID = strings.TrimSpace(groupID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if groupID == "" {
		return nil, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.ListMine")
	defer span.End()

	if _, err := requireJoinedMember(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}

	items, err := s.predictionRepo.ListByGroupAndUser(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("list predictions by group and user: %w", err)
	}

	return items, nil
}

func validateScore(home, away int) error {
	if home < minScoreValue || home > maxScoreValue || away < minScoreValue || away > maxScoreValue {
		return fmt.Errorf("%w: scores must be between %d and %d", ErrInvalidInput, minScoreValue, maxScoreValue)
	}
	return nil
}
