package memory

import (
	"context"
	"sync"

	"github.com/febriansr/prediction-league/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	items map[string]user.Principal
}

func NewUserRepository(seed []user.Principal) *UserRepository {
	items := make(map[string]user.Principal, len(seed))
	for _, item := range seed {
		items[item.UserID] = item
	}
	return &UserRepository{items: items}
}

func (r *UserRepository) UpsertPrincipal(_ context.Context, p user.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[p.UserID] = p
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, userID string) (user.Principal, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[userID]
	return p, ok, nil
}

// username returns the stored username, or the user id as a stand-in so
// a ranking row is never blank.
func (r *UserRepository) username(userID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.items[userID]; ok && p.Username != "" {
		return p.Username
	}
	return userID
}
