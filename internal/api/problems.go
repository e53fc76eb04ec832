package api

import (
	"net/http"

	"github.com/code_drill/drill/internal/service/problem_service"
)

type problemResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Problem problem_service.Problem `json:"problem"`
}

type problemsResponse struct {
	Success  bool                      `json:"success"`
	Message  string                    `json:"message"`
	Problems []problem_service.Problem `json:"problems"`
}

func (a *Api) HandlerCreateProblem(w http.ResponseWriter, r *http.Request) {
	var request problem_service.ProblemRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	problem, err := a.ProblemServiceConfig.CreateProblem(r.Context(), request)
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusCreated, problemResponse{
		Success: true,
		Message: "Problem Created Successfully",
		Problem: problem,
	})
}

func (a *Api) HandlerUpdateProblem(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		handlerError(err, w)
		return
	}
	var request problem_service.ProblemRequest
	if err = decodeJsonBody(r.Body, &request); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	problem, err := a.ProblemServiceConfig.UpdateProblem(r.Context(), id, request)
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, problemResponse{
		Success: true,
		Message: "Problem Updated Successfully",
		Problem: problem,
	})
}

func (a *Api) HandlerGetAllProblems(w http.ResponseWriter, r *http.Request) {
	problems, err := a.ProblemServiceConfig.ListProblems(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, problemsResponse{
		Success:  true,
		Message:  "Problems Fetched Successfully",
		Problems: problems,
	})
}

func (a *Api) HandlerGetProblemById(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		handlerError(err, w)
		return
	}
	problem, err := a.ProblemServiceConfig.GetProblemById(r.Context(), id)
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, problemResponse{
		Success: true,
		Message: "Problem Fetched Successfully",
		Problem: problem,
	})
}

func (a *Api) HandlerGetSolvedProblems(w http.ResponseWriter, r *http.Request) {
	problems, err := a.ProblemServiceConfig.ListSolvedProblems(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, problemsResponse{
		Success:  true,
		Message:  "Problems Fetched Successfully",
		Problems: problems,
	})
}

func (a *Api) HandlerDeleteProblem(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		handlerError(err, w)
		return
	}
	if err = a.ProblemServiceConfig.DeleteProblem(r.Context(), id); err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "Problem deleted Successfully",
	})
}
