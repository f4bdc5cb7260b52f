package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/febriansr/prediction-league/internal/usecase"
)

type sendNudgeRequest struct {
	FixtureID    string `json:"fixture_id" validate:"required"`
	TargetUserID string `json:"target_user_id" validate:"required"`
}

type nudgeEventDTO struct {
	ID           string `json:"id"`
	GroupID      string `json:"group_id"`
	FixtureID    string `json:"fixture_id"`
	TargetUserID string `json:"target_user_id"`
	CreatedAt    string `json:"created_at"`
}

func (h *Handler) SendNudge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SendNudge")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))

	var req sendNudgeRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	event, err := h.nudgeService.Send(ctx, usecase.SendNudgeInput{
		NudgerUserID: principal.UserID,
		GroupID:      groupID,
		FixtureID:    req.FixtureID,
		TargetUserID: req.TargetUserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "send nudge failed", "user_id", principal.UserID, "group_id", groupID, "fixture_id", req.FixtureID, "target_user_id", req.TargetUserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, nudgeEventDTO{
		ID:           event.ID,
		GroupID:      event.GroupID,
		FixtureID:    event.FixtureID,
		TargetUserID: event.TargetUserID,
		CreatedAt:    event.CreatedAt.UTC().Format(time.RFC3339),
	})
}
