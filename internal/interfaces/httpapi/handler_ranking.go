package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/febriansr/prediction-league/internal/domain/ranking"
	"github.com/febriansr/prediction-league/internal/usecase"
)

type rankingItemDTO struct {
	Rank                int    `json:"rank"`
	UserID              string `json:"user_id"`
	Username            string `json:"username"`
	TotalPoints         int    `json:"total_points"`
	PredictionCount     int    `json:"prediction_count"`
	CorrectScoreCount   int    `json:"correct_score_count"`
	CorrectOutcomeCount int    `json:"correct_outcome_count"`
	// The nudge fields only appear on rows the caller can act on.
	Nudgeable      bool   `json:"nudgeable,omitempty"`
	NudgeFixtureID string `json:"nudge_fixture_id,omitempty"`
	NudgedByMe     *bool  `json:"nudged_by_me,omitempty"`
}

func rankingItemToDTO(item ranking.Item) rankingItemDTO {
	dto := rankingItemDTO{
		Rank:                item.Rank,
		UserID:              item.UserID,
		Username:            item.Username,
		TotalPoints:         item.TotalPoints,
		PredictionCount:     item.PredictionCount,
		CorrectScoreCount:   item.CorrectScoreCount,
		CorrectOutcomeCount: item.CorrectOutcomeCount,
	}
	if item.Nudge != nil {
		dto.Nudgeable = true
		dto.NudgeFixtureID = item.Nudge.FixtureID
		nudgedByMe := item.Nudge.NudgedByMe
		dto.NudgedByMe = &nudgedByMe
	}
	return dto
}

func (h *Handler) GetRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRanking")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))

	items, err := h.rankingService.GetRanking(ctx, principal.UserID, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "get ranking failed", "user_id", principal.UserID, "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	dtos := make([]rankingItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, rankingItemToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, dtos)
}
