package service

import (
	"context"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/code_drill/drill/internal/drill_errors"
)

func TestMain(m *testing.M) {
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	logrus.SetLevel(logrus.DebugLevel)
	InitializeServices("test-secret")
	os.Exit(m.Run())
}

func TestSignAndParseClaims(t *testing.T) {
	id := uuid.New()
	token, expiry, err := SignClaims(id, "ada@drill.dev", "ADMIN", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(expiry) <= 0 {
		t.Errorf("expiry should be in the future")
	}

	claims, err := ParseClaims(token)
	if err != nil {
		t.Fatalf("cannot parse signed token: %v", err)
	}
	if claims.UserId != id || claims.Email != "ada@drill.dev" || claims.Role != "ADMIN" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestParseClaimsRejectsBadTokens(t *testing.T) {
	expired, _, err := SignClaims(uuid.New(), "a@b.c", "USER", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	for name, token := range map[string]string{
		"garbage": "not-a-token",
		"expired": expired,
		"empty":   "",
	} {
		if _, err := ParseClaims(token); !errors.Is(err, drill_errors.ErrInvalidUserCredentials) {
			t.Errorf("%s: expected ErrInvalidUserCredentials, got %v", name, err)
		}
	}
}

func TestClaimsContext(t *testing.T) {
	if _, err := GetClaimsFromContext(context.Background()); !errors.Is(err, drill_errors.ErrInternal) {
		t.Errorf("missing claims should be an internal error, got %v", err)
	}
	want := UserCredentialClaims{UserId: uuid.New(), Role: "USER"}
	got, err := GetClaimsFromContext(ContextWithClaims(context.Background(), want))
	if err != nil || got.UserId != want.UserId {
		t.Errorf("got (%+v, %v)", got, err)
	}
}

func TestValidateInput(t *testing.T) {
	type request struct {
		Email string `json:"email" validate:"required,email"`
		Level string `json:"level" validate:"oneof=EASY HARD"`
	}
	err := ValidateInput(request{Email: "nope", Level: "EASY"})
	if !errors.Is(err, drill_errors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if want := "email must be a valid email address"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q should use the json field name", err)
	}
	if err = ValidateInput(request{Email: "a@b.co", Level: "EASY"}); err != nil {
		t.Errorf("valid input rejected: %v", err)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Arrays", "dp", "arrays", "", "DP ", "graphs"})
	want := []string{"arrays", "dp", "graphs"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
