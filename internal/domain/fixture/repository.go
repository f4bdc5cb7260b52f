package fixture

import "context"

type Repository interface {
	GetFixtureByID(ctx context.Context, fixtureID string) (Fixture, bool, error)
	AttachFixture(ctx context.Context, gf GroupFixture) error
	RemoveFixture(ctx context.Context, groupID, fixtureID string) error
	GetPoolEntry(ctx context.Context, groupID, fixtureID string) (PoolEntry, bool, error)
	ListPoolByGroup(ctx context.Context, groupID string) ([]PoolEntry, error)
	ListPoolEntriesByFixtureIDs(ctx context.Context, groupID string, fixtureIDs []string) ([]PoolEntry, error)
}
