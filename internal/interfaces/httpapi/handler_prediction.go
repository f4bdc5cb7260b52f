package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/febriansr/prediction-league/internal/usecase"
)

type submitPredictionRequest struct {
	Home int `json:"home" validate:"gte=0,lte=9"`
	Away int `json:"away" validate:"gte=0,lte=9"`
}

type batchPredictionItemRequest struct {
	FixtureID string `json:"fixture_id" validate:"required"`
	Home      int    `json:"home" validate:"gte=0,lte=9"`
	Away      int    `json:"away" validate:"gte=0,lte=9"`
}

type submitPredictionBatchRequest struct {
	Items []batchPredictionItemRequest `json:"items" validate:"required,min=1,max=50,dive"`
}

type batchRejectionDTO struct {
	FixtureID string `json:"fixture_id"`
	Reason    string `json:"reason"`
}

type submitPredictionBatchDTO struct {
	Accepted []predictionDTO     `json:"accepted"`
	Rejected []batchRejectionDTO `json:"rejected"`
}

func (h *Handler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPrediction")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))
	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))

	var req submitPredictionRequest
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

	placed, err := h.predictionService.Submit(ctx, usecase.SubmitPredictionInput{
		UserID:    principal.UserID,
		GroupID:   groupID,
		FixtureID: fixtureID,
		Home:      req.Home,
		Away:      req.Away,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit prediction failed", "user_id", principal.UserID, "group_id", groupID, "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(placed))
}

func (h *Handler) SubmitPredictionBatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPredictionBatch")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))

	var req submitPredictionBatchRequest
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

	items := make([]usecase.BatchPredictionItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, usecase.BatchPredictionItem{
			FixtureID: item.FixtureID,
			Home:      item.Home,
			Away:      item.Away,
		})
	}

	result, err := h.predictionService.SubmitBatch(ctx, usecase.SubmitPredictionBatchInput{
		UserID:  principal.UserID,
		GroupID: groupID,
		Items:   items,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit prediction batch failed", "user_id", principal.UserID, "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	dto := submitPredictionBatchDTO{
		Accepted: make([]predictionDTO, 0, len(result.Accepted)),
		Rejected: make([]batchRejectionDTO, 0, len(result.Rejected)),
	}
	for _, p := range result.Accepted {
		dto.Accepted = append(dto.Accepted, predictionToDTO(p))
	}
	for _, rejection := range result.Rejected {
		dto.Rejected = append(dto.Rejected, batchRejectionDTO{
			FixtureID: rejection.FixtureID,
			Reason:    rejection.Reason,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, dto)
}

func (h *Handler) ListMyPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyPredictions")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))

	predictions, err := h.predictionService.ListMine(ctx, principal.UserID, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "list my predictions failed", "user_id", principal.UserID, "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]predictionDTO, 0, len(predictions))
	for _, p := range predictions {
		items = append(items, predictionToDTO(p))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}
