package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/febriansr/prediction-league/internal/domain/group"
	"github.com/febriansr/prediction-league/internal/infrastructure/repository/memory"
)

type groupServiceFixture struct {
	groupRepo      *memory.GroupRepository
	fixtureRepo    *memory.FixtureRepository
	predictionRepo *memory.PredictionRepository
	invalidator    *recordingInvalidator
	service        *GroupService
	now            time.Time
}

func newGroupServiceFixture(t *testing.T) *groupServiceFixture {
	t.Helper()

	now := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	users := memory.NewUserRepository(memory.SeedUsers())
	groupRepo := memory.NewGroupRepository(users)
	fixtureRepo := memory.NewFixtureRepository(memory.SeedFixtures(now))
	predictionRepo := memory.NewPredictionRepository()
	invalidator := &recordingInvalidator{}

	service := NewGroupService(groupRepo, fixtureRepo, predictionRepo, invalidator, &sequenceIDGenerator{})
	service.now = func() time.Time { return now }

	return &groupServiceFixture{
		groupRepo:      groupRepo,
		fixtureRepo:    fixtureRepo,
		predictionRepo: predictionRepo,
		invalidator:    invalidator,
		service:        service,
		now:            now,
	}
}

func TestGroupService_CreateGroup(t *testing.T) {
	t.Parallel()

	f := newGroupServiceFixture(t)

	g, err := f.service.CreateGroup(context.Background(), CreateGroupInput{
		UserID:       "user-1",
		Name:         "  Weekend Office Pool  ",
		NudgeEnabled: true,
		NudgeWindow:  36 * time.Hour,
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	if g.Name != "Weekend Office Pool" {
		t.Fatalf("expected trimmed name, got %q", g.Name)
	}
	if g.Status != group.StatusDraft {
		t.Fatalf("expected draft status, got %s", g.Status)
	}
	if g.MaxMembers != defaultMaxMembers {
		t.Fatalf("expected default max members, got %d", g.MaxMembers)
	}
	if len(g.InviteCode) != 8 {
		t.Fatalf("expected 8-char invite code, got %q", g.InviteCode)
	}
	for _, ch := range g.InviteCode {
		if !strings.ContainsRune(inviteCodeAlphabet, ch) {
			t.Fatalf("invite code %q contains %q outside the alphabet", g.InviteCode, ch)
		}
	}
	if !g.Nudge.Enabled || g.Nudge.Window != 36*time.Hour {
		t.Fatalf("unexpected nudge settings: %+v", g.Nudge)
	}

	member, exists, err := f.groupRepo.GetMember(context.Background(), g.ID, "user-1")
	if err != nil || !exists {
		t.Fatalf("expected creator membership, exists=%v err=%v", exists, err)
	}
	if !member.IsJoined() {
		t.Fatalf("expected creator to be joined, got %+v", member)
	}
}

func TestGroupService_UpdateStatus_Lifecycle(t *testing.T) {
	t.Parallel()

	f := newGroupServiceFixture(t)

	g, err := f.service.CreateGroup(context.Background(), CreateGroupInput{UserID: "user-1", Name: "Pool"})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	joined, err := f.service.JoinByInviteCode(context.Background(), JoinGroupByInviteInput{UserID: "user-2", InviteCode: g.InviteCode})
	if err != nil {
		t.Fatalf("join group: %v", err)
	}
	if joined.ID != g.ID {
		t.Fatalf("joined wrong group: %s", joined.ID)
	}

	if _, err := f.service.UpdateStatus(context.Background(), "user-2", g.ID, group.StatusActive); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-creator, got %v", err)
	}

	activated, err := f.service.UpdateStatus(context.Background(), "user-1", g.ID, group.StatusActive)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if activated.Status != group.StatusActive {
		t.Fatalf("expected active status, got %s", activated.Status)
	}

	if _, err := f.service.UpdateStatus(context.Background(), "user-1", g.ID, group.StatusActive); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for repeated activation, got %v", err)
	}

	ended, err := f.service.UpdateStatus(context.Background(), "user-1", g.ID, group.StatusEnded)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if ended.Status != group.StatusEnded {
		t.Fatalf("expected ended status, got %s", ended.Status)
	}

	if _, err := f.service.UpdateStatus(context.Background(), "user-1", g.ID, group.StatusActive); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput reopening an ended group, got %v", err)
	}
}

func TestGroupService_JoinByInviteCode(t *testing.T) {
	t.Parallel()

	f := newGroupServiceFixture(t)

	g, err := f.service.CreateGroup(context.Background(), CreateGroupInput{UserID: "user-1", Name: "Pool", MaxMembers: 2})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	t.Run("unknown code", func(t *testing.T) {
		_, err := f.service.JoinByInviteCode(context.Background(), JoinGroupByInviteInput{UserID: "user-2", InviteCode: "NOSUCHCODE"})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("lowercase code accepted", func(t *testing.T) {
		if _, err := f.service.JoinByInviteCode(context.Background(), JoinGroupByInviteInput{
			UserID:     "user-2",
			InviteCode: strings.ToLower(g.InviteCode),
		}); err != nil {
			t.Fatalf("join with lowercase code: %v", err)
		}
	})

	t.Run("joining twice is idempotent", func(t *testing.T) {
		if _, err := f.service.JoinByInviteCode(context.Background(), JoinGroupByInviteInput{
			UserID:     "user-2",
			InviteCode: g.InviteCode,
		}); err != nil {
			t.Fatalf("second join: %v", err)
		}
	})

	t.Run("full group rejects new members", func(t *testing.T) {
		_, err := f.service.JoinByInviteCode(context.Background(), JoinGroupByInviteInput{
			UserID:     "user-3",
			InviteCode: g.InviteCode,
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for full group, got %v", err)
		}
	})
}

func TestGroupService_LeaveAndRejoinKeepsJoinedAt(t *testing.T) {
	t.Parallel()

	f := newGroupServiceFixture(t)

	g, err := f.service.CreateGroup(context.Background(), CreateGroupInput{UserID: "user-1", Name: "Pool"})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if _, err := f.service.JoinByInviteCode(context.Background(), JoinGroupByInviteInput{UserID: "user-2", InviteCode: g.InviteCode}); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := f.service.Leave(context.Background(), "user-1", g.ID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for creator leave, got %v", err)
	}
	if err := f.service.Leave(context.Background(), "user-2", g.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if err := f.service.Leave(context.Background(), "user-2", g.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden leaving twice, got %v", err)
	}

	member, _, err := f.groupRepo.GetMember(context.Background(), g.ID, "user-2")
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	originalJoinedAt := member.JoinedAt

	// Rejoin a week later; the original join time survives.
	later := f.now.Add(7 * 24 * time.Hour)
	f.service.now = func() time.Time { return later }

	if _, err := f.service.JoinByInviteCode(context.Background(), JoinGroupByInviteInput{UserID: "user-2", InviteCode: g.InviteCode}); err != nil {
		t.Fatalf("rejoin: %v", err)
	}

	member, _, err = f.groupRepo.GetMember(context.Background(), g.ID, "user-2")
	if err != nil {
		t.Fatalf("get member after rejoin: %v", err)
	}
	if !member.IsJoined() {
		t.Fatalf("expected joined member, got %+v", member)
	}
	if !member.JoinedAt.Equal(originalJoinedAt) {
		t.Fatalf("expected joined_at %v preserved, got %v", originalJoinedAt, member.JoinedAt)
	}
	if !member.UpdatedAt.Equal(later) {
		t.Fatalf("expected updated_at %v, got %v", later, member.UpdatedAt)
	}
}

func TestGroupService_AttachAndRemoveFixture(t *testing.T) {
	t.Parallel()

	f := newGroupServiceFixture(t)

	g, err := f.service.CreateGroup(context.Background(), CreateGroupInput{UserID: "user-1", Name: "Pool"})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if _, err := f.service.JoinByInviteCode(context.Background(), JoinGroupByInviteInput{UserID: "user-2", InviteCode: g.InviteCode}); err != nil {
		t.Fatalf("join: %v", err)
	}

	if _, err := f.service.AttachFixture(context.Background(), "user-2", g.ID, memory.FixtureIDUpcomingDerby); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-creator attach, got %v", err)
	}
	if _, err := f.service.AttachFixture(context.Background(), "user-1", g.ID, "missing-fixture"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown fixture, got %v", err)
	}
	if _, err := f.service.AttachFixture(context.Background(), "user-1", g.ID, memory.FixtureIDFinishedOpener); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for started fixture, got %v", err)
	}

	gf, err := f.service.AttachFixture(context.Background(), "user-1", g.ID, memory.FixtureIDUpcomingDerby)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if gf.GroupID != g.ID || gf.FixtureID != memory.FixtureIDUpcomingDerby {
		t.Fatalf("unexpected group fixture: %+v", gf)
	}

	if _, err := f.service.AttachFixture(context.Background(), "user-1", g.ID, memory.FixtureIDUpcomingDerby); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate attach, got %v", err)
	}

	pool, err := f.service.ListPool(context.Background(), "user-2", g.ID)
	if err != nil {
		t.Fatalf("list pool: %v", err)
	}
	if len(pool) != 1 || pool[0].Fixture.ID != memory.FixtureIDUpcomingDerby {
		t.Fatalf("unexpected pool: %+v", pool)
	}

	if err := f.service.RemoveFixture(context.Background(), "user-1", g.ID, "missing-fixture"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound removing unknown fixture, got %v", err)
	}
	if err := f.service.RemoveFixture(context.Background(), "user-1", g.ID, memory.FixtureIDUpcomingDerby); err != nil {
		t.Fatalf("remove: %v", err)
	}

	pool, err = f.service.ListPool(context.Background(), "user-1", g.ID)
	if err != nil {
		t.Fatalf("list pool after remove: %v", err)
	}
	if len(pool) != 0 {
		t.Fatalf("expected empty pool, got %+v", pool)
	}

	var attachInvalidations int
	for _, id := range f.invalidator.calls() {
		if id == g.ID {
			attachInvalidations++
		}
	}
	// One join, one attach, one remove.
	if attachInvalidations != 3 {
		t.Fatalf("expected 3 invalidations, got %d", attachInvalidations)
	}
}

func TestGroupService_ListMyGroups(t *testing.T) {
	t.Parallel()

	f := newGroupServiceFixture(t)

	first, err := f.service.CreateGroup(context.Background(), CreateGroupInput{UserID: "user-1", Name: "Weekday Pool"})
	if err != nil {
		t.Fatalf("create first group: %v", err)
	}
	second, err := f.service.CreateGroup(context.Background(), CreateGroupInput{UserID: "user-2", Name: "Weekend Pool"})
	if err != nil {
		t.Fatalf("create second group: %v", err)
	}
	if _, err := f.service.JoinByInviteCode(context.Background(), JoinGroupByInviteInput{UserID: "user-1", InviteCode: second.InviteCode}); err != nil {
		t.Fatalf("join second group: %v", err)
	}

	if _, err := f.service.AttachFixture(context.Background(), "user-2", second.ID, memory.FixtureIDUpcomingDerby); err != nil {
		t.Fatalf("attach: %v", err)
	}
	entries, err := f.fixtureRepo.ListPoolByGroup(context.Background(), second.ID)
	if err != nil || len(entries) != 1 {
		t.Fatalf("list pool: entries=%d err=%v", len(entries), err)
	}

	predictions := NewPredictionService(f.groupRepo, f.fixtureRepo, f.predictionRepo, f.invalidator, &sequenceIDGenerator{})
	predictions.now = func() time.Time { return f.now }

	seedSettled := func(userID string, points string) {
		p, err := predictions.Submit(context.Background(), SubmitPredictionInput{
			UserID:    userID,
			GroupID:   second.ID,
			FixtureID: memory.FixtureIDUpcomingDerby,
			Home:      1,
			Away:      0,
		})
		if err != nil {
			t.Fatalf("seed prediction for %s: %v", userID, err)
		}
		f.predictionRepo.SetPoints(userID, p.GroupFixtureID, points)
	}
	seedSettled("user-1", "7")
	seedSettled("user-2", "3")

	mine, err := f.service.ListMyGroups(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list my groups: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(mine))
	}

	byID := map[string]MyGroup{}
	for _, mg := range mine {
		byID[mg.Group.ID] = mg
	}
	if byID[first.ID].MemberCount != 1 || byID[first.ID].MyPoints != 0 {
		t.Fatalf("unexpected first group row: %+v", byID[first.ID])
	}
	if byID[second.ID].MemberCount != 2 || byID[second.ID].MyPoints != 7 {
		t.Fatalf("unexpected second group row: %+v", byID[second.ID])
	}
}
