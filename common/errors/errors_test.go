package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/yashrajoria/stripe-bridge/common/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestError_IsMatchesKindAndReason(t *testing.T) {
	err := apperrors.NewAuthenticationError("invalid_signature", "signature mismatch", nil)
	wrapped := fmt.Errorf("verify: %w", err)

	assert.True(t, stderrors.Is(wrapped, apperrors.ErrAuthentication))
	assert.True(t, stderrors.Is(wrapped, &apperrors.Error{Kind: apperrors.KindAuthentication, Reason: "invalid_signature"}))
	assert.False(t, stderrors.Is(wrapped, &apperrors.Error{Kind: apperrors.KindAuthentication, Reason: "missing_secret"}))
	assert.False(t, stderrors.Is(wrapped, apperrors.ErrUpstream))
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("list: %w", apperrors.NewUpstreamError(0, "rate_limit", "too many requests", nil))
	assert.True(t, apperrors.IsKind(err, apperrors.KindUpstream))
	assert.False(t, apperrors.IsKind(err, apperrors.KindConfiguration))
	assert.False(t, apperrors.IsKind(stderrors.New("plain"), apperrors.KindUpstream))
}

func TestNewUpstreamError_DefaultsToBadGateway(t *testing.T) {
	err := apperrors.NewUpstreamError(0, "", "boom", nil)
	assert.Equal(t, http.StatusBadGateway, err.Code)
}

func TestError_MessageIncludesCause(t *testing.T) {
	err := apperrors.NewConfigurationError("stripe client not configured", stderrors.New("empty key"))
	assert.Equal(t, "stripe client not configured: empty key", err.Error())
	assert.Equal(t, "empty key", stderrors.Unwrap(err).Error())
}

func TestHandleError_PlainErrorBecomes500(t *testing.T) {
	w := httptest.NewRecorder()
	apperrors.HandleError(w, stderrors.New("unexpected"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	// shared sentinel must not be mutated
	assert.Nil(t, apperrors.ErrInternalServer.Err)
}

func TestErrorMiddleware_UsesAppErrorStatus(t *testing.T) {
	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(apperrors.NewValidationError("limit", "limit must be between 1 and 100"))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/fail", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "limit must be between 1 and 100")
}
