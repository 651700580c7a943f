package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/yashrajoria/stripe-bridge/common/errors"
)

var validate = validator.New()

// validateRequest checks struct tags and reports the first failing field.
func validateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewValidationError("request", err.Error())
	}
	fe := verrs[0]
	field := toSnake(fe.Field())
	return apperrors.NewValidationError(field, describe(field, fe))
}

func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError(field, field+" is required")
	}
	return nil
}

func describe(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without", "required_unless":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", field, fe.Param())
	case "email":
		return field + " must be a valid email"
	case "url":
		return field + " must be a valid URL"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// metadata copies m onto stripe params via add.
func metadata(m map[string]string, add func(k, v string)) {
	for k, v := range m {
		add(k, v)
	}
}
