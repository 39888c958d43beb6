package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/foodgram/backend/internal/types"
)

type stubValidator struct {
	tokens map[string]uint
}

func (s stubValidator) ValidateToken(_ context.Context, token string) (*types.TokenClaims, error) {
	id, ok := s.tokens[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return &types.TokenClaims{UserID: id, Username: "user"}, nil
}

func newAuthRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c), "has_claims": Claims(c) != nil})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	validator := stubValidator{tokens: map[string]uint{"good": 7}}
	r := newAuthRouter(AuthMiddleware(validator))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"bearer", "Bearer good", http.StatusOK, `{"has_claims":true,"user_id":7}`},
		{"token prefix", "Token good", http.StatusOK, `{"has_claims":true,"user_id":7}`},
		{"missing", "", http.StatusUnauthorized, ""},
		{"bad scheme", "Basic good", http.StatusUnauthorized, ""},
		{"no token", "Bearer", http.StatusUnauthorized, ""},
		{"invalid token", "Bearer bad", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"code":"unauthorized"`)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	validator := stubValidator{tokens: map[string]uint{"good": 7}}
	r := newAuthRouter(OptionalAuth(validator))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"has_claims":false,"user_id":0}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"has_claims":true,"user_id":7}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
