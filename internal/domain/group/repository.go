package group

import "context"

type Repository interface {
	CreateGroup(ctx context.Context, g Group) error
	GetByID(ctx context.Context, groupID string) (Group, bool, error)
	GetByInviteCode(ctx context.Context, inviteCode string) (Group, bool, error)
	UpdateStatus(ctx context.Context, groupID string, from, to Status) error
	ListGroupsByUser(ctx context.Context, userID string) ([]Group, error)
	GetMember(ctx context.Context, groupID, userID string) (Member, bool, error)
	UpsertMember(ctx context.Context, m Member) error
	CountJoinedMembers(ctx context.Context, groupID string) (int, error)
	ListMembersWithUsers(ctx context.Context, groupID string) ([]MemberWithUser, error)
}
