package api

import (
	"net/http"

	"github.com/code_drill/drill/internal/service/submission_service"
)

type submissionResponse struct {
	Success    bool                          `json:"success"`
	Message    string                        `json:"message"`
	Submission submission_service.Submission `json:"submission"`
}

type runResponse struct {
	Success bool                         `json:"success"`
	Message string                       `json:"message"`
	Result  submission_service.RunResult `json:"result"`
}

// HandlerExecuteCode grades code against a problem and records the submission.
func (a *Api) HandlerExecuteCode(w http.ResponseWriter, r *http.Request) {
	var request submission_service.ExecuteRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	submission, err := a.SubmissionServiceConfig.Grade(r.Context(), request)
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, submissionResponse{
		Success:    true,
		Message:    "Code Executed! Successfully!",
		Submission: submission,
	})
}

func (a *Api) HandlerRunCode(w http.ResponseWriter, r *http.Request) {
	var request submission_service.ExecuteRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := a.SubmissionServiceConfig.Run(r.Context(), request)
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, runResponse{
		Success: true,
		Message: "Code Run Successfully",
		Result:  result,
	})
}
