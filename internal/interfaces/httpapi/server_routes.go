package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicMatchRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/matches/{matchID}/lineup", handler.GetLineup)
	mux.HandleFunc("GET /v1/matches/{matchID}/lineup/active", handler.GetActivePlayers)
	mux.HandleFunc("GET /v1/matches/{matchID}/live", handler.GetLiveState)
	mux.HandleFunc("GET /v1/matches/{matchID}/details", handler.GetMatchDetails)
	mux.HandleFunc("GET /v1/matches/{matchID}/timeline", handler.GetTimeline)
}

func registerAuthorizedMatchRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/matches/{matchID}/lineup-intervals", RequireAuth(verifier, http.HandlerFunc(handler.CreateLineupInterval)))
	mux.Handle("PATCH /v1/matches/{matchID}/lineup-intervals/{intervalID}", RequireAuth(verifier, http.HandlerFunc(handler.UpdateLineupInterval)))
	mux.Handle("DELETE /v1/matches/{matchID}/lineup-intervals/{intervalID}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteLineupInterval)))
	mux.Handle("POST /v1/matches/{matchID}/lineup-intervals/import", RequireAuth(verifier, http.HandlerFunc(handler.ImportLineup)))
	mux.Handle("POST /v1/matches/{matchID}/substitutions", RequireAuth(verifier, http.HandlerFunc(handler.Substitute)))
	mux.Handle("POST /v1/matches/{matchID}/periods", RequireAuth(verifier, http.HandlerFunc(handler.StartPeriod)))
	mux.Handle("POST /v1/matches/{matchID}/periods/{periodID}/end", RequireAuth(verifier, http.HandlerFunc(handler.EndPeriod)))
	mux.Handle("PUT /v1/matches/{matchID}/periods/import", RequireAuth(verifier, http.HandlerFunc(handler.ImportPeriod)))
}
