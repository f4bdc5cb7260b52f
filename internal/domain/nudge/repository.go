package nudge

import "context"

type Repository interface {
	// Create inserts the event and relies on the store's unique constraint
	// for duplicate detection: a violation surfaces as ErrDuplicateEvent.
	// There is no pre-check-then-insert window to race through.
	Create(ctx context.Context, e Event) error
	ListByNudgerInGroup(ctx context.Context, groupID, nudgerUserID string) ([]Event, error)
}
