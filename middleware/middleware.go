package middleware

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/code_drill/drill/internal/service"
)

const (
	KeyJwtSessionCookieName = "jwt"
)

// JWTMiddleware admits requests carrying a valid session cookie and puts
// the caller's claims on the request context.
func JWTMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(KeyJwtSessionCookieName)
		if err != nil || cookie.Value == "" {
			unauthorized(w, "Unauthorized - No token provided")
			return
		}

		claims, err := service.ParseClaims(cookie.Value)
		if err != nil {
			log.WithField("path", r.URL.Path).Debugf("rejected session, %v", err)
			unauthorized(w, "Unauthorized - Invalid token")
			return
		}

		handler(w, r.WithContext(service.ContextWithClaims(r.Context(), claims)))
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write(body)
}
