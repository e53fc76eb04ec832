package api

import (
	"net/http"

	"github.com/code_drill/drill/internal/judge"
)

type readinessResponse struct {
	Status     string          `json:"status"`
	ActiveRuns int             `json:"activeRuns"`
	Runs       []judge.RunInfo `json:"runs"`
}

func (a *Api) HandlerReadiness(w http.ResponseWriter, r *http.Request) {
	response := readinessResponse{Status: "ok", Runs: []judge.RunInfo{}}
	if a.Runs != nil {
		response.Runs = a.Runs.Snapshot()
		response.ActiveRuns = len(response.Runs)
	}
	respondWithValue(w, http.StatusOK, response)
}
