package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/febriansr/prediction-league/internal/domain/prediction"
	"github.com/febriansr/prediction-league/internal/platform/scoreline"
)

type PredictionRepository struct {
	mu    sync.RWMutex
	items map[string]prediction.Prediction
}

func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{items: make(map[string]prediction.Prediction)}
}

func (r *PredictionRepository) Upsert(_ context.Context, p prediction.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.upsertLocked(p)
	return nil
}

func (r *PredictionRepository) UpsertBatch(_ context.Context, items []prediction.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range items {
		r.upsertLocked(p)
	}
	return nil
}

// upsertLocked mirrors the store's ON CONFLICT behavior: placed_at and
// the row id survive, everything else is replaced.
func (r *PredictionRepository) upsertLocked(p prediction.Prediction) {
	key := predictionKey(p.UserID, p.GroupFixtureID)
	if existing, ok := r.items[key]; ok {
		p.ID = existing.ID
		p.PlacedAt = existing.PlacedAt
	}
	r.items[key] = p
}

func (r *PredictionRepository) GetByUserAndGroupFixture(_ context.Context, userID, groupFixtureID string) (prediction.Prediction, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[predictionKey(userID, groupFixtureID)]
	return p, ok, nil
}

func (r *PredictionRepository) ListByGroupAndUser(_ context.Context, groupID, userID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, p := range r.items {
		if p.GroupID == groupID && p.UserID == userID {
			out = append(out, p)
		}
	}
	sortPredictions(out)
	return out, nil
}

func (r *PredictionRepository) ListByGroup(_ context.Context, groupID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, p := range r.items {
		if p.GroupID == groupID {
			out = append(out, p)
		}
	}
	sortPredictions(out)
	return out, nil
}

func (r *PredictionRepository) SumPointsByUser(_ context.Context, groupID string) ([]prediction.UserPointsSum, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	totals := make(map[string]int)
	for _, p := range r.items {
		if p.GroupID != groupID {
			continue
		}
		if _, ok := totals[p.UserID]; !ok {
			totals[p.UserID] = 0
		}
		if p.Points != nil {
			totals[p.UserID] += scoreline.ParsePoints(*p.Points)
		}
	}

	out := make([]prediction.UserPointsSum, 0, len(totals))
	for userID, total := range totals {
		out = append(out, prediction.UserPointsSum{UserID: userID, TotalPoints: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// SetPoints writes a settled points value, used by tests to simulate the
// external settlement process.
func (r *PredictionRepository) SetPoints(userID, groupFixtureID, points string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := predictionKey(userID, groupFixtureID)
	if p, ok := r.items[key]; ok {
		value := points
		settledAt := p.UpdatedAt
		p.Points = &value
		p.SettledAt = &settledAt
		r.items[key] = p
	}
}

func predictionKey(userID, groupFixtureID string) string {
	return userID + "::" + groupFixtureID
}

func sortPredictions(items []prediction.Prediction) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].FixtureID != items[j].FixtureID {
			return items[i].FixtureID < items[j].FixtureID
		}
		return items[i].UserID < items[j].UserID
	})
}
