package api

import (
	"net/http"

	"github.com/code_drill/drill/internal/service/submission_service"
)

type submissionsResponse struct {
	Success     bool                            `json:"success"`
	Message     string                          `json:"message"`
	Submissions []submission_service.Submission `json:"submissions"`
}

func (a *Api) HandlerGetAllSubmissions(w http.ResponseWriter, r *http.Request) {
	submissions, err := a.SubmissionServiceConfig.ListSubmissions(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, submissionsResponse{
		Success:     true,
		Message:     "Submissions fetched successfully",
		Submissions: submissions,
	})
}

func (a *Api) HandlerGetSubmissionsForProblem(w http.ResponseWriter, r *http.Request) {
	problemID, err := uuidParam(r, "problemId")
	if err != nil {
		handlerError(err, w)
		return
	}
	submissions, err := a.SubmissionServiceConfig.ListSubmissionsForProblem(r.Context(), problemID)
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, submissionsResponse{
		Success:     true,
		Message:     "Submissions fetched successfully",
		Submissions: submissions,
	})
}

func (a *Api) HandlerGetSubmissionsCount(w http.ResponseWriter, r *http.Request) {
	problemID, err := uuidParam(r, "problemId")
	if err != nil {
		handlerError(err, w)
		return
	}
	count, err := a.SubmissionServiceConfig.CountSubmissionsForProblem(r.Context(), problemID)
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Count   int64  `json:"count"`
	}{true, "Submissions count fetched successfully", count})
}

func (a *Api) HandlerGetUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.SubmissionServiceConfig.UserStats(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, struct {
		Success bool                         `json:"success"`
		Stats   submission_service.UserStats `json:"stats"`
	}{true, stats})
}
