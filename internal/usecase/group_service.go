package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/febriansr/prediction-league/internal/domain/fixture"
	"github.com/febriansr/prediction-league/internal/domain/group"
	"github.com/febriansr/prediction-league/internal/domain/prediction"
	idgen "github.com/febriansr/prediction-league/internal/platform/id"
)

const inviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const defaultMaxMembers = 50

type CreateGroupInput struct {
	UserID       string
	Name         string
	MaxMembers   int
	NudgeEnabled bool
	NudgeWindow  time.Duration
}

type JoinGroupByInviteInput struct {
	UserID     string
	InviteCode string
}

// MyGroup is a group row as seen from the caller's group list.
type MyGroup struct {
	Group       group.Group
	MemberCount int
	MyPoints    int
}

type GroupService struct {
	groupRepo      group.Repository
	fixtureRepo    fixture.Repository
	predictionRepo prediction.Repository
	invalidator    RankingInvalidator
	idGen          idgen.Generator
	now            func() time.Time
}

func NewGroupService(
	groupRepo group.Repository,
	fixtureRepo fixture.Repository,
	predictionRepo prediction.Repository,
	invalidator RankingInvalidator,
	idGen idgen.Generator,
) *GroupService {
	return &GroupService{
		groupRepo:      groupRepo,
		fixtureRepo:    fixtureRepo,
		predictionRepo: predictionRepo,
		invalidator:    invalidator,
		idGen:          idGen,
		now:            time.Now,
	}
}

func (s *GroupService) CreateGroup(ctx context.Context, input CreateGroupInput) (group.Group, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.Name = strings.TrimSpace(input.Name)
	if input.UserID == "" {
		return group.Group{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return group.Group{}, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}
	if input.MaxMembers < 0 {
		return group.Group{}, fmt.Errorf("%w: max members must be >= 0", ErrInvalidInput)
	}
	if input.MaxMembers == 0 {
		input.MaxMembers = defaultMaxMembers
	}
	if input.NudgeWindow < 0 {
		return group.Group{}, fmt.Errorf("%w: nudge window must be >= 0", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.CreateGroup")
	defer span.End()

	groupID, err := s.idGen.NewID()
	if err != nil {
		return group.Group{}, fmt.Errorf("generate group id: %w", err)
	}
	inviteCode, err := generateInviteCode(8)
	if err != nil {
		return group.Group{}, fmt.Errorf("generate invite code: %w", err)
	}

	now := s.now().UTC()
	g := group.Group{
		ID:            groupID,
		CreatorUserID: input.UserID,
		Name:          input.Name,
		InviteCode:    inviteCode,
		Status:        group.StatusDraft,
		MaxMembers:    input.MaxMembers,
		Scoring:       group.DefaultScoringWeights(),
		Nudge: group.NudgeSettings{
			Enabled: input.NudgeEnabled,
			Window:  input.NudgeWindow,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.groupRepo.CreateGroup(ctx, g); err != nil {
		if isDuplicateConstraintError(err) {
			return group.Group{}, fmt.Errorf("%w: duplicate group name or invite code", ErrConflict)
		}
		return group.Group{}, fmt.Errorf("create group: %w", err)
	}

	// The creator joins their own group immediately.
	member := group.Member{
		GroupID:   g.ID,
		UserID:    input.UserID,
		Status:    group.MemberStatusJoined,
		JoinedAt:  now,
		UpdatedAt: now,
	}
	if err := s.groupRepo.UpsertMember(ctx, member); err != nil {
		return group.Group{}, fmt.Errorf("upsert creator membership: %w", err)
	}

	return g, nil
}

func (s *GroupService) GetGroup(ctx context.Context, userID, groupID string) (group.Group, error) {
	userID = strings.TrimSpace(userID)
	groupID = strings.TrimSpace(groupID)
	if userID == "" {
		return group.Group{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if groupID == "" {
		return group.Group{}, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.GetGroup")
	defer span.End()

	return requireJoinedMember(ctx, s.groupRepo, groupID, userID)
}

// UpdateStatus advances the group lifecycle. Only the creator can do it,
// and only forward: draft to active, active to ended.
func (s *GroupService) UpdateStatus(ctx context.Context, userID, groupID string, to group.Status) (group.Group, error) {
	userID = strings.TrimSpace(userID)
	groupID = strings.TrimSpace(groupID)
	if userID == "" {
		return group.Group{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if groupID == "" {
		return group.Group{}, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}
	switch to {
	case group.StatusActive, group.StatusEnded:
	default:
		return group.Group{}, fmt.Errorf("%w: invalid target status %q", ErrInvalidInput, to)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.UpdateStatus")
	defer span.End()

	g, err := requireJoinedMember(ctx, s.groupRepo, groupID, userID)
	if err != nil {
		return group.Group{}, err
	}
	if g.CreatorUserID != userID {
		return group.Group{}, fmt.Errorf("%w: only the group creator can change the status", ErrForbidden)
	}
	if !group.CanTransition(g.Status, to) {
		return group.Group{}, fmt.Errorf("%w: cannot change status from %s to %s", ErrInvalidInput, g.Status, to)
	}

	if err := s.groupRepo.UpdateStatus(ctx, groupID, g.Status, to); err != nil {
		return group.Group{}, fmt.Errorf("update group status: %w", err)
	}

	g.Status = to
	g.UpdatedAt = s.now().UTC()
	return g, nil
}

func (s *GroupService) JoinByInviteCode(ctx context.Context, input JoinGroupByInviteInput) (group.Group, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.InviteCode = strings.ToUpper(strings.TrimSpace(input.InviteCode))
	if input.UserID == "" {
		return group.Group{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.InviteCode == "" {
		return group.Group{}, fmt.Errorf("%w: invite code is required", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.JoinByInviteCode")
	defer span.End()

	g, exists, err := s.groupRepo.GetByInviteCode(ctx, input.InviteCode)
	if err != nil {
		return group.Group{}, fmt.Errorf("get group by invite code: %w", err)
	}
	if !exists {
		return group.Group{}, fmt.Errorf("%w: invite code not found", ErrNotFound)
	}
	if g.Status == group.StatusEnded {
		return group.Group{}, fmt.Errorf("%w: this group has ended", ErrInvalidInput)
	}

	member, alreadyMember, err := s.groupRepo.GetMember(ctx, g.ID, input.UserID)
	if err != nil {
		return group.Group{}, fmt.Errorf("get group member: %w", err)
	}
	if alreadyMember && member.IsJoined() {
		return g, nil
	}

	if g.MaxMembers > 0 {
		count, err := s.groupRepo.CountJoinedMembers(ctx, g.ID)
		if err != nil {
			return group.Group{}, fmt.Errorf("count joined members: %w", err)
		}
		if count >= g.MaxMembers {
			return group.Group{}, fmt.Errorf("%w: this group is full", ErrInvalidInput)
		}
	}

	now := s.now().UTC()
	joinedAt := now
	if alreadyMember {
		joinedAt = member.JoinedAt
	}
	if err := s.groupRepo.UpsertMember(ctx, group.Member{
		GroupID:   g.ID,
		UserID:    input.UserID,
		Status:    group.MemberStatusJoined,
		JoinedAt:  joinedAt,
		UpdatedAt: now,
	}); err != nil {
		return group.Group{}, fmt.Errorf("upsert group membership: %w", err)
	}

	// A rejoining member changes who appears in the ranking.
	s.invalidator.Invalidate(g.ID)

	return g, nil
}

func (s *GroupService) Leave(ctx context.Context, userID, groupID string) error {
	userID = strings.TrimSpace(userID)
	groupID = strings.TrimSpace(groupID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if groupID == "" {
		return fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.Leave")
	defer span.End()

	g, err := requireJoinedMember(ctx, s.groupRepo, groupID, userID)
	if err != nil {
		return err
	}
	if g.CreatorUserID == userID {
		return fmt.Errorf("%w: the group creator cannot leave their own group", ErrInvalidInput)
	}

	member, _, err := s.groupRepo.GetMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("get group member: %w", err)
	}
	member.Status = group.MemberStatusLeft
	member.UpdatedAt = s.now().UTC()
	if err := s.groupRepo.UpsertMember(ctx, member); err != nil {
		return fmt.Errorf("upsert group membership: %w", err)
	}

	s.invalidator.Invalidate(groupID)

	return nil
}

// ListMyGroups returns every group the caller has joined together with
// the member count and the caller's settled points total.
func (s *GroupService) ListMyGroups(ctx context.Context, userID string) ([]MyGroup, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.ListMyGroups")
	defer span.End()

	groups, err := s.groupRepo.ListGroupsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups by user: %w", err)
	}

	items := make([]MyGroup, 0, len(groups))
	for _, g := range groups {
		count, err := s.groupRepo.CountJoinedMembers(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("count joined members for group=%s: %w", g.ID, err)
		}

		sums, err := s.predictionRepo.SumPointsByUser(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("sum points for group=%s: %w", g.ID, err)
		}
		myPoints := 0
		for _, sum := range sums {
			if sum.UserID == userID {
				myPoints = sum.TotalPoints
				break
			}
		}

		items = append(items, MyGroup{
			Group:       g,
			MemberCount: count,
			MyPoints:    myPoints,
		})
	}

	return items, nil
}

// AttachFixture adds a fixture to the group's prediction pool. Only the
// creator can manage the pool, and a started fixture can never enter it.
func (s *GroupService) AttachFixture(ctx context.Context, userID, groupID, fixtureID string) (fixture.GroupFixture, error) {
	userID = strings.TrimSpace(userID)
	groupID = strings.TrimSpace(groupID)
	fixtureID = strings.TrimSpace(fixtureID)
	if userID == "" {
		return fixture.GroupFixture{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if groupID == "" {
		return fixture.GroupFixture{}, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}
	if fixtureID == "" {
		return fixture.GroupFixture{}, fmt.Errorf("%w: fixture id is required", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.AttachFixture")
	defer span.End()

	g, err := requireJoinedMember(ctx, s.groupRepo, groupID, userID)
	if err != nil {
		return fixture.GroupFixture{}, err
	}
	if g.CreatorUserID != userID {
		return fixture.GroupFixture{}, fmt.Errorf("%w: only the group creator can manage fixtures", ErrForbidden)
	}
	if g.Status == group.StatusEnded {
		return fixture.GroupFixture{}, fmt.Errorf("%w: this group has ended", ErrInvalidInput)
	}

	f, exists, err := s.fixtureRepo.GetFixtureByID(ctx, fixtureID)
	if err != nil {
		return fixture.GroupFixture{}, fmt.Errorf("get fixture by id: %w", err)
	}
	if !exists {
		return fixture.GroupFixture{}, fmt.Errorf("%w: fixture not found", ErrNotFound)
	}

	now := s.now().UTC()
	if fixture.HasStarted(f, now) {
		return fixture.GroupFixture{}, fmt.Errorf("%w: match has already started", ErrInvalidInput)
	}

	groupFixtureID, err := s.idGen.NewID()
	if err != nil {
		return fixture.GroupFixture{}, fmt.Errorf("generate group fixture id: %w", err)
	}

	gf := fixture.GroupFixture{
		ID:        groupFixtureID,
		GroupID:   groupID,
		FixtureID: fixtureID,
		AddedAt:   now,
	}
	if err := s.fixtureRepo.AttachFixture(ctx, gf); err != nil {
		if isDuplicateConstraintError(err) {
			return fixture.GroupFixture{}, fmt.Errorf("%w: fixture is already in this group", ErrConflict)
		}
		return fixture.GroupFixture{}, fmt.Errorf("attach group fixture: %w", err)
	}

	s.invalidator.Invalidate(groupID)

	return gf, nil
}

// RemoveFixture drops a fixture from the pool before kickoff.
func (s *GroupService) RemoveFixture(ctx context.Context, userID, groupID, fixtureID string) error {
	userID = strings.TrimSpace(userID)
	groupID = strings.TrimSpace(groupID)
	fixtureID = strings.TrimSpace(fixtureID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if groupID == "" {
		return fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}
	if fixtureID == "" {
		return fmt.Errorf("%w: fixture id is required", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.RemoveFixture")
	defer span.End()

	g, err := requireJoinedMember(ctx, s.groupRepo, groupID, userID)
	if err != nil {
		return err
	}
	if g.CreatorUserID != userID {
		return fmt.Errorf("%w: only the group creator can manage fixtures", ErrForbidden)
	}

	entry, exists, err := s.fixtureRepo.GetPoolEntry(ctx, groupID, fixtureID)
	if err != nil {
		return fmt.Errorf("get group fixture: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: fixture is not in this group", ErrNotFound)
	}
	if fixture.HasStarted(entry.Fixture, s.now().UTC()) {
		return fmt.Errorf("%w: match has already started", ErrInvalidInput)
	}

	if err := s.fixtureRepo.RemoveFixture(ctx, groupID, fixtureID); err != nil {
		return fmt.Errorf("remove group fixture: %w", err)
	}

	s.invalidator.Invalidate(groupID)

	return nil
}

// ListPool returns the group's fixtures in prediction order.
func (s *GroupService) ListPool(ctx context.Context, userID, groupID string) ([]fixture.PoolEntry, error) {
	userID = strings.TrimSpace(userID)
	groupID = strings.TrimSpace(groupID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if groupID == "" {
		return nil, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.ListPool")
	defer span.End()

	if _, err := requireJoinedMember(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}

	entries, err := s.fixtureRepo.ListPoolByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group fixtures: %w", err)
	}

	return entries, nil
}

func generateInviteCode(length int) (string, error) {
	if length < 6 {
		length = 6
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes for invite code: %w", err)
	}

	out := make([]byte, length)
	for i, b := range buf {
		out[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}
	return string(out), nil
}

func isDuplicateConstraintError(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "duplicate key value violates unique constraint")
}
