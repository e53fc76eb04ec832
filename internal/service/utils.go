package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/code_drill/drill/internal/drill_errors"
)

// custom function for translating validation error into user readable errors
func translateValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", e.Field())
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", e.Field(), e.Param())
		}
		return fmt.Sprintf("%s must have at least %s items", e.Field(), e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", e.Field(), e.Param())
		}
		return fmt.Sprintf("%s must have at most %s items", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", e.Field())
	default:
		return fmt.Sprintf("Validation failed for %s with rule %s", e.Field(), e.Tag())
	}
}

// ValidateInput validates the input struct and returns the first
// user-friendly error message wrapped in ErrInvalidRequest.
func ValidateInput(inp any) error {
	if err := validate.Struct(inp); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			errorMessage := translateValidationError(validationErrors[0])
			log.Debug(errorMessage)
			return fmt.Errorf("%w, %s", drill_errors.ErrInvalidRequest, errorMessage)
		}
		return fmt.Errorf("%w, %w", drill_errors.ErrInvalidRequest, err)
	}
	return nil
}

// NormalizeTags trims, lowercases and de-duplicates tags, keeping first
// occurrence order.
func NormalizeTags(tags []string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	res := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || !seen.Add(tag) {
			continue
		}
		res = append(res, tag)
	}
	return res
}
