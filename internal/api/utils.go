package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/code_drill/drill/internal/drill_errors"
	"github.com/code_drill/drill/internal/judge"
)

const (
	maxBodyBytes = 1 << 20
	// nginx's "client closed request"
	statusClientClosedRequest = 499
)

func decodeJsonBody(body io.Reader, v any) error {
	decoder := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid request payload, %w", err)
	}
	return nil
}

func respondWithJson(w http.ResponseWriter, statusCode int, responseBytes []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(responseBytes); err != nil {
		log.Errorf("cannot write response, %v", err)
	}
}

// respondWithValue marshals v and writes it with statusCode.
func respondWithValue(w http.ResponseWriter, statusCode int, v any) {
	responseBytes, err := json.Marshal(v)
	if err != nil {
		log.Errorf("unable to marshal %T, %v", v, err)
		respondWithError(w, http.StatusInternalServerError, drill_errors.ErrInternal.Error())
		return
	}
	respondWithJson(w, statusCode, responseBytes)
}

func respondWithError(w http.ResponseWriter, statusCode int, msg string) {
	responseBytes, _ := json.Marshal(errorResponse{Error: msg})
	respondWithJson(w, statusCode, responseBytes)
}

// handlerError maps service errors to a status code and a client message.
// Causes of internal failures stay in the logs.
func handlerError(err error, w http.ResponseWriter) {
	var refFailure *judge.ReferenceFailure
	switch {
	case errors.As(err, &refFailure):
		respondWithError(w, http.StatusBadRequest, refFailure.Error())
	case errors.Is(err, drill_errors.ErrRunAbandoned):
		log.Warnf("request abandoned by client, %v", err)
		respondWithError(w, statusClientClosedRequest, drill_errors.ErrRunAbandoned.Error())
	case drill_errors.IsJudgeInfraError(err):
		respondWithError(w, http.StatusInternalServerError, drill_errors.ErrJudgeUnavailable.Error())
	case errors.Is(err, drill_errors.ErrInvalidRequest):
		respondWithError(w, http.StatusBadRequest, clientMessage(err, drill_errors.ErrInvalidRequest))
	case errors.Is(err, drill_errors.ErrUnsupportedLanguage):
		respondWithError(w, http.StatusBadRequest, clientMessage(err, drill_errors.ErrUnsupportedLanguage))
	case errors.Is(err, drill_errors.ErrInvalidUserCredentials):
		respondWithError(w, http.StatusUnauthorized, clientMessage(err, drill_errors.ErrInvalidUserCredentials))
	case errors.Is(err, drill_errors.ErrUnAuthorized):
		respondWithError(w, http.StatusForbidden, clientMessage(err, drill_errors.ErrUnAuthorized))
	case errors.Is(err, drill_errors.ErrNotFound):
		respondWithError(w, http.StatusNotFound, clientMessage(err, drill_errors.ErrNotFound))
	case errors.Is(err, drill_errors.ErrEntityAlreadyExist):
		respondWithError(w, http.StatusConflict, clientMessage(err, drill_errors.ErrEntityAlreadyExist))
	default:
		log.Errorf("unhandled error in handler, %v", err)
		respondWithError(w, http.StatusInternalServerError, drill_errors.ErrInternal.Error())
	}
}

// clientMessage drops the sentinel prefix from "<sentinel>, <detail>" errors.
func clientMessage(err error, sentinel error) string {
	msg := err.Error()
	if detail, ok := strings.CutPrefix(msg, sentinel.Error()+", "); ok {
		return detail
	}
	return msg
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w, invalid %s %q", drill_errors.ErrInvalidRequest, name, raw)
	}
	return id, nil
}
