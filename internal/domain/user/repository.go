package user

import "context"

// Repository keeps a local copy of authenticated principals so rankings
// can show usernames without calling the auth service. Rows are refreshed
// opportunistically on authenticated requests.
type Repository interface {
	UpsertPrincipal(ctx context.Context, p Principal) error
	GetByID(ctx context.Context, userID string) (Principal, bool, error)
}
