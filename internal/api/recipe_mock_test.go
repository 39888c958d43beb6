package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type mockedRecipeAPI struct {
	router   *gin.Engine
	auth     *mocks.MockAuthService
	recipes  *mocks.MockRecipeService
	relation *mocks.MockRelationService
	exports  *mocks.MockShoppingListService
}

func setupMockedRecipeAPI(t *testing.T) *mockedRecipeAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m := &mockedRecipeAPI{
		auth:     new(mocks.MockAuthService),
		recipes:  new(mocks.MockRecipeService),
		relation: new(mocks.MockRelationService),
		exports:  new(mocks.MockShoppingListService),
	}
	m.auth.On("ValidateToken", mock.Anything, "good").
		Return(&types.TokenClaims{UserID: 7, Username: "cook"}, nil)

	m.router = gin.New()
	NewRecipeHandler(m.recipes, m.relation, m.exports, m.auth, testPageSize).
		RegisterRoutes(m.router.Group("/api"))
	t.Cleanup(func() {
		m.recipes.AssertExpectations(t)
		m.relation.AssertExpectations(t)
		m.exports.AssertExpectations(t)
	})
	return m
}

func (m *mockedRecipeAPI) do(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Token good")
	w := httptest.NewRecorder()
	m.router.ServeHTTP(w, req)
	return w
}

func TestInternalErrorsAreMasked(t *testing.T) {
	m := setupMockedRecipeAPI(t)
	m.recipes.On("Get", mock.Anything, uint(7), uint(3)).
		Return(nil, errors.New("pq: connection reset by peer"))

	w := m.do(http.MethodGet, "/api/recipes/3")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	got := decode(t, w)
	assert.Equal(t, "internal server error", got["error"])
	assert.Equal(t, "internal", got["code"])
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestErrorKindsMapToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.NewForbiddenError("only the author may change this recipe"), http.StatusForbidden},
		{service.NewNotFoundError("recipe", 3), http.StatusNotFound},
		{service.NewConflictError("already there"), http.StatusBadRequest},
		{service.NewUnauthorizedError("who are you"), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			m := setupMockedRecipeAPI(t)
			m.recipes.On("Delete", mock.Anything, uint(7), uint(3)).Return(tt.err)

			w := m.do(http.MethodDelete, "/api/recipes/3")
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRelationRoutesPickRelation(t *testing.T) {
	m := setupMockedRecipeAPI(t)
	short := &types.ShortRecipeResponse{ID: 3, Name: "soup", CookingTime: 10}
	m.relation.On("Add", mock.Anything, service.RelationFavorite, uint(7), uint(3)).Return(short, nil)
	m.relation.On("Remove", mock.Anything, service.RelationShoppingCart, uint(7), uint(3)).Return(nil)

	w := m.do(http.MethodPost, "/api/recipes/3/favorite")
	assert.Equal(t, http.StatusCreated, w.Code)
	w = m.do(http.MethodDelete, "/api/recipes/3/shopping_cart")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDownloadShoppingCartFailure(t *testing.T) {
	m := setupMockedRecipeAPI(t)
	m.exports.On("Export", mock.Anything, uint(7)).
		Return(nil, service.NewInternalError(errors.New("font is corrupt")))

	w := m.do(http.MethodGet, "/api/recipes/download_shopping_cart")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestListPassesViewerAndPage(t *testing.T) {
	m := setupMockedRecipeAPI(t)
	m.recipes.On("List", mock.Anything, uint(7), mock.Anything, types.Pagination{Page: 2, Size: 2}).
		Return([]types.RecipeResponse{{ID: 1}, {ID: 2}}, int64(5), nil)

	w := m.do(http.MethodGet, "/api/recipes?page=2&limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.EqualValues(t, 5, page["count"])
	assert.Equal(t, "http://example.com/api/recipes?limit=2&page=3", page["next"])
	assert.Equal(t, "http://example.com/api/recipes?limit=2", page["previous"])
}
