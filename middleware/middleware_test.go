package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/code_drill/drill/internal/service"
)

func TestMain(m *testing.M) {
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	logrus.SetLevel(logrus.DebugLevel)
	service.InitializeServices("test-secret")
	os.Exit(m.Run())
}

func TestJWTMiddleware(t *testing.T) {
	userID := uuid.New()
	token, _, err := service.SignClaims(userID, "a@b.c", "USER", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	var seen uuid.UUID
	handler := JWTMiddleware(func(w http.ResponseWriter, r *http.Request) {
		claims, err := service.GetClaimsFromContext(r.Context())
		if err != nil {
			t.Fatal(err)
		}
		seen = claims.UserId
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		cookie *http.Cookie
		status int
	}{
		{"no cookie", nil, http.StatusUnauthorized},
		{"garbage token", &http.Cookie{Name: KeyJwtSessionCookieName, Value: "nope"}, http.StatusUnauthorized},
		{"valid token", &http.Cookie{Name: KeyJwtSessionCookieName, Value: token}, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
	if seen != userID {
		t.Errorf("claims carried user %v, want %v", seen, userID)
	}
}
