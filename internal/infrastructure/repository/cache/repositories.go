package cache

import (
	"context"

	"github.com/febriansr/prediction-league/internal/domain/fixture"
	basecache "github.com/febriansr/prediction-league/internal/platform/cache"
)

// FixtureRepository caches upstream fixture rows in front of the store.
// Only the fixtures table is cached: it is reference data maintained by
// an external sync, so TTL-bounded staleness is fine there. Pool reads
// always hit the store because prediction eligibility depends on them.
type FixtureRepository struct {
	next  fixture.Repository
	cache *basecache.Store
}

func NewFixtureRepository(next fixture.Repository, cache *basecache.Store) *FixtureRepository {
	return &FixtureRepository{next: next, cache: cache}
}

func (r *FixtureRepository) GetFixtureByID(ctx context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	key := "fixture:id:" + fixtureID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetFixtureByID(ctx, fixtureID)
		if err != nil {
			return nil, err
		}
		return cachedFixtureByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return fixture.Fixture{}, false, err
	}

	cached, _ := v.(cachedFixtureByID)
	return cached.value, cached.exists, nil
}

func (r *FixtureRepository) AttachFixture(ctx context.Context, gf fixture.GroupFixture) error {
	return r.next.AttachFixture(ctx, gf)
}

func (r *FixtureRepository) RemoveFixture(ctx context.Context, groupID, fixtureID string) error {
	return r.next.RemoveFixture(ctx, groupID, fixtureID)
}

func (r *FixtureRepository) GetPoolEntry(ctx context.Context, groupID, fixtureID string) (fixture.PoolEntry, bool, error) {
	return r.next.GetPoolEntry(ctx, groupID, fixtureID)
}

func (r *FixtureRepository) ListPoolByGroup(ctx context.Context, groupID string) ([]fixture.PoolEntry, error) {
	return r.next.ListPoolByGroup(ctx, groupID)
}

func (r *FixtureRepository) ListPoolEntriesByFixtureIDs(ctx context.Context, groupID string, fixtureIDs []string) ([]fixture.PoolEntry, error) {
	return r.next.ListPoolEntriesByFixtureIDs(ctx, groupID, fixtureIDs)
}

type cachedFixtureByID struct {
	value  fixture.Fixture
	exists bool
}
