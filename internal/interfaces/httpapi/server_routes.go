package httpapi

import (
	"net/http"

	"github.com/febriansr/prediction-league/internal/domain/user"
	"github.com/febriansr/prediction-league/internal/platform/logging"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier, users user.Repository, logger *logging.Logger) {
	authed := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(verifier, users, logger, h)
	}

	mux.Handle("POST /v1/groups", authed(handler.CreateGroup))
	mux.Handle("GET /v1/groups", authed(handler.ListMyGroups))
	mux.Handle("POST /v1/groups/join", authed(handler.JoinGroupByInvite))
	mux.Handle("GET /v1/groups/{groupID}", authed(handler.GetGroup))
	mux.Handle("POST /v1/groups/{groupID}/status", authed(handler.UpdateGroupStatus))
	mux.Handle("POST /v1/groups/{groupID}/leave", authed(handler.LeaveGroup))

	mux.Handle("GET /v1/groups/{groupID}/fixtures", authed(handler.ListGroupFixtures))
	mux.Handle("POST /v1/groups/{groupID}/fixtures", authed(handler.AttachGroupFixture))
	mux.Handle("DELETE /v1/groups/{groupID}/fixtures/{fixtureID}", authed(handler.RemoveGroupFixture))

	mux.Handle("PUT /v1/groups/{groupID}/predictions/{fixtureID}", authed(handler.SubmitPrediction))
	mux.Handle("POST /v1/groups/{groupID}/predictions/batch", authed(handler.SubmitPredictionBatch))
	mux.Handle("GET /v1/groups/{groupID}/predictions/me", authed(handler.ListMyPredictions))

	mux.Handle("GET /v1/groups/{groupID}/ranking", authed(handler.GetRanking))
	mux.Handle("POST /v1/groups/{groupID}/nudges", authed(handler.SendNudge))
}
