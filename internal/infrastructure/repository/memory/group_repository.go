package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/febriansr/prediction-league/internal/domain/group"
)

type GroupRepository struct {
	mu      sync.RWMutex
	groups  map[string]group.Group
	members map[string]group.Member
	users   *UserRepository
}

func NewGroupRepository(users *UserRepository) *GroupRepository {
	return &GroupRepository{
		groups:  make(map[string]group.Group),
		members: make(map[string]group.Member),
		users:   users,
	}
}

func (r *GroupRepository) CreateGroup(_ context.Context, g group.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.groups[g.ID]; exists {
		return fmt.Errorf("duplicate key value violates unique constraint: groups_pkey")
	}
	for _, existing := range r.groups {
		if existing.InviteCode == g.InviteCode {
			return fmt.Errorf("duplicate key value violates unique constraint: groups_invite_code_key")
		}
	}

	r.groups[g.ID] = g
	return nil
}

// PutGroup overwrites a group unconditionally. Test helper.
func (r *GroupRepository) PutGroup(g group.Group) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.groups[g.ID] = g
}

func (r *GroupRepository) GetByID(_ context.Context, groupID string) (group.Group, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.groups[groupID]
	return g, ok, nil
}

func (r *GroupRepository) GetByInviteCode(_ context.Context, inviteCode string) (group.Group, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.groups {
		if g.InviteCode == inviteCode {
			return g, true, nil
		}
	}
	return group.Group{}, false, nil
}

func (r *GroupRepository) UpdateStatus(_ context.Context, groupID string, from, to group.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[groupID]
	if !ok {
		return fmt.Errorf("group not found: %s", groupID)
	}
	if g.Status != from {
		return fmt.Errorf("group status changed concurrently: %s", groupID)
	}

	g.Status = to
	r.groups[groupID] = g
	return nil
}

func (r *GroupRepository) ListGroupsByUser(_ context.Context, userID string) ([]group.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]group.Group, 0)
	for _, m := range r.members {
		if m.UserID != userID || !m.IsJoined() {
			continue
		}
		if g, ok := r.groups[m.GroupID]; ok {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *GroupRepository) GetMember(_ context.Context, groupID, userID string) (group.Member, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[memberKey(groupID, userID)]
	return m, ok, nil
}

func (r *GroupRepository) UpsertMember(_ context.Context, m group.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.members[memberKey(m.GroupID, m.UserID)] = m
	return nil
}

func (r *GroupRepository) CountJoinedMembers(_ context.Context, groupID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, m := range r.members {
		if m.GroupID == groupID && m.IsJoined() {
			count++
		}
	}
	return count, nil
}

func (r *GroupRepository) ListMembersWithUsers(_ context.Context, groupID string) ([]group.MemberWithUser, error) {
	r.mu.RLock()
	members := make([]group.Member, 0)
	for _, m := range r.members {
		if m.GroupID == groupID {
			members = append(members, m)
		}
	}
	r.mu.RUnlock()

	out := make([]group.MemberWithUser, 0, len(members))
	for _, m := range members {
		out = append(out, group.MemberWithUser{
			Member:   m,
			Username: r.users.username(m.UserID),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func memberKey(groupID, userID string) string {
	return groupID + "::" + userID
}
