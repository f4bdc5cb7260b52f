package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/febriansr/prediction-league/internal/domain/fixture"
)

type FixtureRepository struct {
	mu       sync.RWMutex
	fixtures map[string]fixture.Fixture
	pool     map[string]fixture.GroupFixture
}

func NewFixtureRepository(fixtures []fixture.Fixture) *FixtureRepository {
	byID := make(map[string]fixture.Fixture, len(fixtures))
	for _, item := range fixtures {
		byID[item.ID] = item
	}
	return &FixtureRepository{
		fixtures: byID,
		pool:     make(map[string]fixture.GroupFixture),
	}
}

// UpsertFixture updates the upstream fixture row, used by tests to move
// a fixture through its lifecycle.
func (r *FixtureRepository) UpsertFixture(f fixture.Fixture) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fixtures[f.ID] = f
}

func (r *FixtureRepository) GetFixtureByID(_ context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.fixtures[fixtureID]
	return f, ok, nil
}

func (r *FixtureRepository) AttachFixture(_ context.Context, gf fixture.GroupFixture) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := poolKey(gf.GroupID, gf.FixtureID)
	if _, exists := r.pool[key]; exists {
		return fmt.Errorf("duplicate key value violates unique constraint: group_fixtures_group_id_fixture_id_key")
	}

	r.pool[key] = gf
	return nil
}

func (r *FixtureRepository) RemoveFixture(_ context.Context, groupID, fixtureID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pool, poolKey(groupID, fixtureID))
	return nil
}

func (r *FixtureRepository) GetPoolEntry(_ context.Context, groupID, fixtureID string) (fixture.PoolEntry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gf, ok := r.pool[poolKey(groupID, fixtureID)]
	if !ok {
		return fixture.PoolEntry{}, false, nil
	}
	f, ok := r.fixtures[fixtureID]
	if !ok {
		return fixture.PoolEntry{}, false, nil
	}

	return fixture.PoolEntry{GroupFixture: gf, Fixture: f}, true, nil
}

func (r *FixtureRepository) ListPoolByGroup(_ context.Context, groupID string) ([]fixture.PoolEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.PoolEntry, 0)
	for _, gf := range r.pool {
		if gf.GroupID != groupID {
			continue
		}
		f, ok := r.fixtures[gf.FixtureID]
		if !ok {
			continue
		}
		out = append(out, fixture.PoolEntry{GroupFixture: gf, Fixture: f})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Fixture.KickoffAt.Equal(out[j].Fixture.KickoffAt) {
			return out[i].Fixture.KickoffAt.Before(out[j].Fixture.KickoffAt)
		}
		return out[i].Fixture.ID < out[j].Fixture.ID
	})
	return out, nil
}

func (r *FixtureRepository) ListPoolEntriesByFixtureIDs(ctx context.Context, groupID string, fixtureIDs []string) ([]fixture.PoolEntry, error) {
	out := make([]fixture.PoolEntry, 0, len(fixtureIDs))
	seen := make(map[string]struct{}, len(fixtureIDs))
	for _, fixtureID := range fixtureIDs {
		if _, ok := seen[fixtureID]; ok {
			continue
		}
		seen[fixtureID] = struct{}{}

		entry, exists, err := r.GetPoolEntry(ctx, groupID, fixtureID)
		if err != nil {
			return nil, err
		}
		if exists {
			out = append(out, entry)
		}
	}
	return out, nil
}

func poolKey(groupID, fixtureID string) string {
	return groupID + "::" + fixtureID
}
