package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/febriansr/prediction-league/internal/domain/fixture"
	"github.com/febriansr/prediction-league/internal/domain/group"
	"github.com/febriansr/prediction-league/internal/domain/prediction"
	"github.com/febriansr/prediction-league/internal/platform/logging"
	"github.com/febriansr/prediction-league/internal/usecase"
)

type Handler struct {
	groupService      *usecase.GroupService
	predictionService *usecase.PredictionService
	rankingService    *usecase.RankingService
	nudgeService      *usecase.NudgeService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	groupService *usecase.GroupService,
	predictionService *usecase.PredictionService,
	rankingService *usecase.RankingService,
	nudgeService *usecase.NudgeService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		groupService:      groupService,
		predictionService: predictionService,
		rankingService:    rankingService,
		nudgeService:      nudgeService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type groupDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CreatorUserID string `json:"creator_user_id"`
	InviteCode    string `json:"invite_code"`
	Status        string `json:"status"`
	MaxMembers    int    `json:"max_members"`
	NudgeEnabled  bool   `json:"nudge_enabled"`
	NudgeWindowS  int64  `json:"nudge_window_seconds,omitempty"`
	CreatedAt     string `json:"created_at"`
	MemberCount   *int   `json:"member_count,omitempty"`
	MyPoints      *int   `json:"my_points,omitempty"`
}

func groupToDTO(g group.Group) groupDTO {
	return groupDTO{
		ID:            g.ID,
		Name:          g.Name,
		CreatorUserID: g.CreatorUserID,
		InviteCode:    g.InviteCode,
		Status:        string(g.Status),
		MaxMembers:    g.MaxMembers,
		NudgeEnabled:  g.Nudge.Enabled,
		NudgeWindowS:  int64(g.Nudge.Window / time.Second),
		CreatedAt:     g.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type poolEntryDTO struct {
	FixtureID string `json:"fixture_id"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	KickoffAt string `json:"kickoff_at"`
	State     string `json:"state"`
	HomeScore *int   `json:"home_score,omitempty"`
	AwayScore *int   `json:"away_score,omitempty"`
	AddedAt   string `json:"added_at"`
}

func poolEntryToDTO(entry fixture.PoolEntry) poolEntryDTO {
	return poolEntryDTO{
		FixtureID: entry.Fixture.ID,
		HomeTeam:  entry.Fixture.HomeTeam,
		AwayTeam:  entry.Fixture.AwayTeam,
		KickoffAt: entry.Fixture.KickoffAt.UTC().Format(time.RFC3339),
		State:     fixture.NormalizeState(entry.Fixture.State),
		HomeScore: entry.Fixture.HomeScore,
		AwayScore: entry.Fixture.AwayScore,
		AddedAt:   entry.GroupFixture.AddedAt.UTC().Format(time.RFC3339),
	}
}

type predictionDTO struct {
	FixtureID string  `json:"fixture_id"`
	Home      int     `json:"home"`
	Away      int     `json:"away"`
	PlacedAt  string  `json:"placed_at"`
	UpdatedAt string  `json:"updated_at"`
	Points    *string `json:"points,omitempty"`
	SettledAt string  `json:"settled_at,omitempty"`
}

func predictionToDTO(p prediction.Prediction) predictionDTO {
	dto := predictionDTO{
		FixtureID: p.FixtureID,
		Home:      p.Score.Home,
		Away:      p.Score.Away,
		PlacedAt:  p.PlacedAt.UTC().Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
		Points:    p.Points,
	}
	if p.SettledAt != nil {
		dto.SettledAt = p.SettledAt.UTC().Format(time.RFC3339)
	}
	return dto
}
