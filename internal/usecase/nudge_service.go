package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/febriansr/prediction-league/internal/domain/fixture"
	"github.com/febriansr/prediction-league/internal/domain/group"
	"github.com/febriansr/prediction-league/internal/domain/nudge"
	"github.com/febriansr/prediction-league/internal/domain/prediction"
	idgen "github.com/febriansr/prediction-league/internal/platform/id"
)

type SendNudgeInput struct {
	NudgerUserID string
	GroupID      string
	FixtureID    string
	TargetUserID string
}

type NudgeService struct {
	groupRepo      group.Repository
	fixtureRepo    fixture.Repository
	predictionRepo prediction.Repository
	nudgeRepo      nudge.Repository
	idGen          idgen.Generator
	defaultWindow  time.Duration
	now            func() time.Time
}

func NewNudgeService(
	groupRepo group.Repository,
	fixtureRepo fixture.Repository,
	predictionRepo prediction.Repository,
	nudgeRepo nudge.Repository,
	idGen idgen.Generator,
	defaultWindow time.Duration,
) *NudgeService {
	return &NudgeService{
		groupRepo:      groupRepo,
		fixtureRepo:    fixtureRepo,
		predictionRepo: predictionRepo,
		nudgeRepo:      nudgeRepo,
		idGen:          idGen,
		defaultWindow:  defaultWindow,
		now:            time.Now,
	}
}

// Send records one member reminding another to predict a fixture. The
// preconditions run in a fixed order; duplicate detection is left to the
// store's unique constraint, so two concurrent sends for the same tuple
// cannot both succeed.
func (s *NudgeService) Send(ctx context.Context, input SendNudgeInput) (nudge.Event, error) {
	input.NudgerUserID = strings.TrimSpace(input.NudgerUserID)
	input.GroupID = strings.TrimSpace(input.GroupID)
	input.FixtureID = strings.TrimSpace(input.FixtureID)
	input.TargetUserID = strings.TrimSpace(input.TargetUserID)
	if input.NudgerUserID == "" {
		return nudge.Event{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.GroupID == "" {
		return nudge.Event{}, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}
	if input.FixtureID == "" {
		return nudge.Event{}, fmt.Errorf("%w: fixture id is required", ErrInvalidInput)
	}
	if input.TargetUserID == "" {
		return nudge.Event{}, fmt.Errorf("%w: target user id is required", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.NudgeService.Send")
	defer span.End()

	g, err := requireJoinedMember(ctx, s.groupRepo, input.GroupID, input.NudgerUserID)
	if err != nil {
		return nudge.Event{}, err
	}

	if input.TargetUserID == input.NudgerUserID {
		return nudge.Event{}, fmt.Errorf("%w: you cannot nudge yourself", ErrInvalidInput)
	}

	target, exists, err := s.groupRepo.GetMember(ctx, input.GroupID, input.TargetUserID)
	if err != nil {
		return nudge.Event{}, fmt.Errorf("get target member: %w", err)
	}
	if !exists || !target.IsJoined() {
		return nudge.Event{}, fmt.Errorf("%w: target member not found in this group", ErrNotFound)
	}

	if !g.Nudge.Enabled {
		return nudge.Event{}, fmt.Errorf("%w: nudging is disabled for this group", ErrInvalidInput)
	}

	entry, exists, err := s.fixtureRepo.GetPoolEntry(ctx, input.GroupID, input.FixtureID)
	if err != nil {
		return nudge.Event{}, fmt.Errorf("get group fixture: %w", err)
	}
	if !exists {
		return nudge.Event{}, fmt.Errorf("%w: fixture is not in this group", ErrNotFound)
	}

	if fixture.NormalizeState(entry.Fixture.State) != fixture.StateNotStarted {
		return nudge.Event{}, fmt.Errorf("%w: fixture is not open for nudging", ErrInvalidInput)
	}

	window := g.Nudge.Window
	if window <= 0 {
		window = s.defaultWindow
	}
	now := s.now().UTC()
	kickoff := entry.Fixture.KickoffAt
	// The window is inclusive at both ends: a kickoff exactly window
	// away is still nudgeable.
	if kickoff.Before(now) || kickoff.After(now.Add(window)) {
		return nudge.Event{}, fmt.Errorf("%w: fixture kickoff is outside the nudge window", ErrInvalidInput)
	}

	_, exists, err = s.predictionRepo.GetByUserAndGroupFixture(ctx, input.TargetUserID, entry.GroupFixture.ID)
	if err != nil {
		return nudge.Event{}, fmt.Errorf("get target prediction: %w", err)
	}
	if exists {
		return nudge.Event{}, fmt.Errorf("%w: target member already predicted this fixture", ErrInvalidInput)
	}

	eventID, err := s.idGen.NewID()
	if err != nil {
		return nudge.Event{}, fmt.Errorf("generate nudge event id: %w", err)
	}

	event := nudge.Event{
		ID:           eventID,
		GroupID:      input.GroupID,
		FixtureID:    input.FixtureID,
		NudgerUserID: input.NudgerUserID,
		TargetUserID: input.TargetUserID,
		CreatedAt:    now,
	}
	if err := s.nudgeRepo.Create(ctx, event); err != nil {
		if errors.Is(err, nudge.ErrDuplicateEvent) {
			return nudge.Event{}, fmt.Errorf("%w: you already nudged this member for this fixture", ErrConflict)
		}
		return nudge.Event{}, fmt.Errorf("create nudge event: %w", err)
	}

	return event, nil
}
