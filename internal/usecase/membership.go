package usecase

import (
	"context"
	"fmt"

	"github.com/febriansr/prediction-league/internal/domain/group"
)

// requireJoinedMember loads the group and checks the caller is currently a
// joined member. Membership is checked before anything else so a
// non-member can never learn about the group's contents through error
// shapes.
func requireJoinedMember(ctx context.Context, repo group.Repository, groupID, userID string) (group.Group, error) {
	g, exists, err := repo.GetByID(ctx, groupID)
	if err != nil {
		return group.Group{}, fmt.Errorf("get group by id: %w", err)
	}
	if !exists {
		return group.Group{}, fmt.Errorf("%w: group not found", ErrNotFound)
	}

	member, exists, err := repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return group.Group{}, fmt.Errorf("get group member: %w", err)
	}
	if !exists || !member.IsJoined() {
		return group.Group{}, fmt.Errorf("%w: you are not a member of this group", ErrForbidden)
	}

	return g, nil
}
