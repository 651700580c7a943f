package services

import (
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v80"

	apperrors "github.com/yashrajoria/stripe-bridge/common/errors"
)

// optString returns nil for "" so the field is omitted from the request.
func optString(s string) *string {
	if s == "" {
		return nil
	}
	return stripe.String(s)
}

func notFound(resource, key string) error {
	return apperrors.New(http.StatusNotFound, fmt.Sprintf("%s %q not found", resource, key), nil)
}
