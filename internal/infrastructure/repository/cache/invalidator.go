package cache

import (
	"context"

	"github.com/panjf2000/ants/v2"

	basecache "github.com/febriansr/prediction-league/internal/platform/cache"
	"github.com/febriansr/prediction-league/internal/platform/logging"
	"github.com/febriansr/prediction-league/internal/usecase"
)

// RankingInvalidator drops ranking snapshots off the request path. Every
// successful prediction or membership write schedules a delete on a small
// worker pool; writers never wait for it and never see its errors.
type RankingInvalidator struct {
	store  *basecache.Store
	pool   *ants.Pool
	logger *logging.Logger
}

func NewRankingInvalidator(store *basecache.Store, workers int, logger *logging.Logger) (*RankingInvalidator, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if workers < 1 {
		workers = 1
	}

	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	return &RankingInvalidator{
		store:  store,
		pool:   pool,
		logger: logger,
	}, nil
}

func (i *RankingInvalidator) Invalidate(groupIDs ...string) {
	if i == nil || i.store == nil {
		return
	}

	for _, groupID := range groupIDs {
		if groupID == "" {
			continue
		}
		key := usecase.RankingCacheKey(groupID)
		if err := i.pool.Submit(func() {
			i.store.Delete(context.Background(), key)
		}); err != nil {
			// Pool saturated or released: delete inline rather than
			// serving a stale ranking.
			i.store.Delete(context.Background(), key)
			i.logger.Warn("ranking invalidation ran inline", "group_id", groupID, "error", err)
		}
	}
}

// InvalidateAll drops every cached ranking snapshot.
func (i *RankingInvalidator) InvalidateAll() {
	if i == nil || i.store == nil {
		return
	}
	i.store.DeletePrefix(context.Background(), usecase.RankingCachePrefix())
}

func (i *RankingInvalidator) Close() {
	if i == nil || i.pool == nil {
		return
	}
	i.pool.Release()
}
