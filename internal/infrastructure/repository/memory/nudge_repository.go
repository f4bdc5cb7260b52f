package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/febriansr/prediction-league/internal/domain/nudge"
)

type NudgeRepository struct {
	mu    sync.RWMutex
	items map[string]nudge.Event
}

func NewNudgeRepository() *NudgeRepository {
	return &NudgeRepository{items: make(map[string]nudge.Event)}
}

func (r *NudgeRepository) Create(_ context.Context, e nudge.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := nudgeKey(e.GroupID, e.FixtureID, e.NudgerUserID, e.TargetUserID)
	if _, exists := r.items[key]; exists {
		return fmt.Errorf("%w: nudge_events_tuple_key", nudge.ErrDuplicateEvent)
	}

	r.items[key] = e
	return nil
}

func (r *NudgeRepository) ListByNudgerInGroup(_ context.Context, groupID, nudgerUserID string) ([]nudge.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]nudge.Event, 0)
	for _, e := range r.items {
		if e.GroupID == groupID && e.NudgerUserID == nudgerUserID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func nudgeKey(groupID, fixtureID, nudgerUserID, targetUserID string) string {
	return groupID + "::" + fixtureID + "::" + nudgerUserID + "::" + targetUserID
}
