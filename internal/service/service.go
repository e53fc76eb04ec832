package service

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/code_drill/drill/internal/drill_errors"
)

type contextKey string

const (
	MinPasswordLength               = 6
	MaxPasswordLength               = 72
	KeyCtxUserCredClaims contextKey = "UserCredClaims"
)

var (
	validate  *validator.Validate
	jwtSecret []byte
)

// InitializeServices must be called once before any service is used.
func InitializeServices(secret string) {
	validate = initValidator() // used for validating struct fields
	jwtSecret = []byte(secret)
}

func initValidator() *validator.Validate {
	log.Info("initializing validator")
	validate := validator.New(validator.WithRequiredStructEnabled())

	// This makes error.Field() return "first_name" instead of "FirstName"
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

func GetClaimsFromContext(
	ctx context.Context,
) (claims UserCredentialClaims, err error) {
	claimsValue := ctx.Value(KeyCtxUserCredClaims)
	claims, ok := claimsValue.(UserCredentialClaims)
	if !ok {
		err = fmt.Errorf(
			"%w, unable to parse claims to service.UserCredentialClaims, type of claims found is %T",
			drill_errors.ErrInternal,
			claimsValue,
		)
		log.Error(err)
	}
	return
}

// ContextWithClaims is used by the auth middleware (and tests) to attach the
// caller's identity to a request context.
func ContextWithClaims(ctx context.Context, claims UserCredentialClaims) context.Context {
	return context.WithValue(ctx, KeyCtxUserCredClaims, claims)
}
