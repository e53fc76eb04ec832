package api

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/code_drill/drill/internal/service/auth_service"
	"github.com/code_drill/drill/internal/service/user_service"
	"github.com/code_drill/drill/middleware"
)

type userResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	User    user_service.User `json:"user"`
}

func (a *Api) HandlerRegister(w http.ResponseWriter, r *http.Request) {
	var request auth_service.UserRegistration
	if err := decodeJsonBody(r.Body, &request); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, session, err := a.AuthServiceConfig.Register(r.Context(), request)
	if err != nil {
		handlerError(err, w)
		return
	}

	a.setSessionCookie(w, session.Token, session.Expiry)
	respondWithValue(w, http.StatusCreated, userResponse{
		Success: true,
		Message: "User created successfully",
		User:    user,
	})
}

func (a *Api) HandlerLogin(w http.ResponseWriter, r *http.Request) {
	var request auth_service.UserLoginRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, session, err := a.AuthServiceConfig.Login(r.Context(), request)
	if err != nil {
		handlerError(err, w)
		return
	}

	a.setSessionCookie(w, session.Token, session.Expiry)
	log.WithField("user_id", user.ID).Debug("session cookie set")
	respondWithValue(w, http.StatusOK, userResponse{
		Success: true,
		Message: "User logged in successfully",
		User:    user,
	})
}

func (a *Api) HandlerLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.KeyJwtSessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	respondWithValue(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "User logged out successfully",
	})
}

func (a *Api) HandlerCheck(w http.ResponseWriter, r *http.Request) {
	user, err := a.AuthServiceConfig.Check(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, userResponse{
		Success: true,
		Message: "User authenticated successfully",
		User:    user,
	})
}

func (a *Api) setSessionCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.KeyJwtSessionCookieName,
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
