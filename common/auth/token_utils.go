package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const (
	// SubjectKey is the gin context key holding the authenticated subject.
	SubjectKey = "subject"
	RoleAdmin  = "admin"
)

// TokenValidator checks HMAC-signed JWTs against a shared secret.
type TokenValidator struct {
	secretKey []byte
}

// NewTokenValidator returns a validator. An empty secret rejects every token.
func NewTokenValidator(secret string) *TokenValidator {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return &TokenValidator{}
	}
	return &TokenValidator{secretKey: []byte(secret)}
}

// ParseAndValidateToken parses a JWT token string and returns its claims.
// If expectedType is non-empty, the claim "typ" must match it.
func (v *TokenValidator) ParseAndValidateToken(tokenStr, expectedType string) (jwt.MapClaims, error) {
	if v == nil || v.secretKey == nil {
		return nil, fmt.Errorf("JWT secret not configured")
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secretKey, nil
	})

	if err != nil || token == nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if expectedType != "" {
		if typ, ok := claims["typ"].(string); !ok || typ != expectedType {
			return nil, fmt.Errorf("invalid token type")
		}
	}
	return claims, nil
}

// AdminAuth admits only bearer tokens carrying role=admin.
func AdminAuth(v *TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := v.ParseAndValidateToken(strings.TrimPrefix(header, "Bearer "), "access")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		if role, _ := claims["role"].(string); role != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		if sub, ok := claims["sub"].(string); ok {
			c.Set(SubjectKey, sub)
		}
		c.Next()
	}
}
