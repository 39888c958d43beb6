package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestTagEndpoints(t *testing.T) {
	env := setupTestRouter(t)
	breakfast := testhelpers.CreateTag(t, env.db, "breakfast")
	testhelpers.CreateTag(t, env.db, "dinner")

	w := env.performRequest(http.MethodGet, "/api/tags", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var tags []types.TagResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tags))
	require.Len(t, tags, 2)
	assert.Equal(t, "breakfast", tags[0].Slug)

	w = env.performRequest(http.MethodGet, fmt.Sprintf("/api/tags/%d", breakfast.ID), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, breakfast.Color, decode(t, w)["color"])

	w = env.performRequest(http.MethodGet, "/api/tags/999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIngredientEndpoints(t *testing.T) {
	env := setupTestRouter(t)
	egg := testhelpers.CreateIngredient(t, env.db, "Эгг-ног", "мл")
	testhelpers.CreateIngredient(t, env.db, "яйцо", "шт")

	w := env.performRequest(http.MethodGet, "/api/ingredients?name="+url.QueryEscape("эг"), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []types.IngredientResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, egg.ID, list[0].ID)
	assert.Equal(t, "мл", list[0].MeasurementUnit)

	w = env.performRequest(http.MethodGet, "/api/ingredients?name=zzz", nil, "")
	assert.JSONEq(t, `[]`, w.Body.String())

	w = env.performRequest(http.MethodGet, fmt.Sprintf("/api/ingredients/%d", egg.ID), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.performRequest(http.MethodGet, "/api/ingredients/999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	w := env.performRequest(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
}
