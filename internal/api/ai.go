package api

import (
	"net/http"

	"github.com/code_drill/drill/internal/service/review_service"
)

func (a *Api) HandlerGenerateReview(w http.ResponseWriter, r *http.Request) {
	var request review_service.ReviewRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	review, err := a.ReviewServiceConfig.Review(r.Context(), request)
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, review)
}

func (a *Api) HandlerReviewHealth(w http.ResponseWriter, r *http.Request) {
	respondWithValue(w, http.StatusOK, a.ReviewServiceConfig.Health())
}

func (a *Api) HandlerReviewLanguages(w http.ResponseWriter, r *http.Request) {
	respondWithValue(w, http.StatusOK, a.ReviewServiceConfig.Languages())
}
