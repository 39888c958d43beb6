package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/types"
)

// Context keys set by the auth middleware.
const (
	ContextUserID = "user_id"
	ContextClaims = "claims"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// AuthMiddleware rejects requests without a valid token.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			abortUnauthorized(c, "authentication credentials were not provided")
			return
		}
		if authenticate(c, validator) {
			c.Next()
		}
	}
}

// OptionalAuth identifies the user when a token is sent and lets anonymous
// requests through. A malformed or invalid token is still rejected.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		if authenticate(c, validator) {
			c.Next()
		}
	}
}

func authenticate(c *gin.Context, validator TokenValidator) bool {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		abortUnauthorized(c, "invalid authorization header format")
		return false
	}

	claims, err := validator.ValidateToken(c.Request.Context(), token)
	if err != nil {
		abortUnauthorized(c, "invalid token")
		return false
	}

	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextClaims, claims)
	return true
}

// bearerToken accepts both "Bearer <jwt>" and "Token <jwt>".
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", false
	}
	switch strings.ToLower(parts[0]) {
	case "bearer", "token":
		return parts[1], true
	}
	return "", false
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "code": "unauthorized"})
}

// UserID returns the authenticated user id, or 0 for anonymous requests.
func UserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// Claims returns the token claims of the request, or nil.
func Claims(c *gin.Context) *types.TokenClaims {
	if v, ok := c.Get(ContextClaims); ok {
		if claims, ok := v.(*types.TokenClaims); ok {
			return claims
		}
	}
	return nil
}
