package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram-v2/backend/internal/testhelpers"
	"github.com/pageza/foodgram-v2/backend/internal/types"
)

func (e *testEnv) createRecipePayload(t *testing.T) map[string]interface{} {
	t.Helper()
	tag := testhelpers.CreateTestTag(t, e.db, "soups", "soup")
	salt := testhelpers.CreateTestIngredient(t, e.db, "Salt", "g")

	return map[string]interface{}{
		"name":         "Tomato soup",
		"text":         "Boil and blend.",
		"image":        "/media/recipes/soup.jpg",
		"cooking_time": 30,
		"tags":         []string{tag.ID.String()},
		"ingredients": []map[string]interface{}{
			{"id": salt.ID.String(), "amount": 5},
		},
	}
}

func TestCreateRecipeEndpoint(t *testing.T) {
	e := setupTestEnv(t)
	token := e.registerUser(t, "author@example.com", "author")
	payload := e.createRecipePayload(t)

	w := e.request(t, http.MethodPost, "/api/v1/recipes", payload, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var recipe types.RecipeResponse
	decodeJSON(t, w, &recipe)
	assert.Equal(t, "Tomato soup", recipe.Name)
	assert.Equal(t, "author", recipe.Author.Username)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, 5, recipe.Ingredients[0].Amount)
}

func TestRecipeWritesRequireAuth(t *testing.T) {
	e := setupTestEnv(t)
	payload := e.createRecipePayload(t)

	w := e.request(t, http.MethodPost, "/api/v1/recipes", payload, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.request(t, http.MethodPost, "/api/v1/recipes", payload, "bogus-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecipeValidationSurface(t *testing.T) {
	e := setupTestEnv(t)
	token := e.registerUser(t, "author@example.com", "author")

	payload := e.createRecipePayload(t)
	payload["ingredients"] = []map[string]interface{}{}

	w := e.request(t, http.MethodPost, "/api/v1/recipes", payload, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at least one ingredient required")
}

func TestAnonymousRecipeReads(t *testing.T) {
	e := setupTestEnv(t)
	token := e.registerUser(t, "author@example.com", "author")
	payload := e.createRecipePayload(t)

	w := e.request(t, http.MethodPost, "/api/v1/recipes", payload, token)
	require.Equal(t, http.StatusCreated, w.Code)
	var created types.RecipeResponse
	decodeJSON(t, w, &created)

	w = e.request(t, http.MethodGet, "/api/v1/recipes", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Count   int64                 `json:"count"`
		Next    *string               `json:"next"`
		Results []types.RecipeResponse `json:"results"`
	}
	decodeJSON(t, w, &page)
	assert.EqualValues(t, 1, page.Count)
	assert.Nil(t, page.Next)
	require.Len(t, page.Results, 1)
	assert.False(t, page.Results[0].IsFavorited)

	w = e.request(t, http.MethodGet, "/api/v1/recipes/"+created.ID.String(), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.request(t, http.MethodGet, "/api/v1/recipes/does-not-parse", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateRecipePermissions(t *testing.T) {
	e := setupTestEnv(t)
	authorToken := e.registerUser(t, "author@example.com", "author")
	otherToken := e.registerUser(t, "other@example.com", "other")
	payload := e.createRecipePayload(t)

	w := e.request(t, http.MethodPost, "/api/v1/recipes", payload, authorToken)
	require.Equal(t, http.StatusCreated, w.Code)
	var created types.RecipeResponse
	decodeJSON(t, w, &created)

	update := map[string]interface{}{"name": "Renamed"}
	path := "/api/v1/recipes/" + created.ID.String()

	w = e.request(t, http.MethodPatch, path, update, otherToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.request(t, http.MethodPatch, path, update, authorToken)
	require.Equal(t, http.StatusOK, w.Code)
	var updated types.RecipeResponse
	decodeJSON(t, w, &updated)
	assert.Equal(t, "Renamed", updated.Name)

	w = e.request(t, http.MethodDelete, path, nil, otherToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.request(t, http.MethodDelete, path, nil, authorToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = e.request(t, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFavoriteEndpoints(t *testing.T) {
	e := setupTestEnv(t)
	authorToken := e.registerUser(t, "author@example.com", "author")
	fanToken := e.registerUser(t, "fan@example.com", "fan")
	payload := e.createRecipePayload(t)

	w := e.request(t, http.MethodPost, "/api/v1/recipes", payload, authorToken)
	require.Equal(t, http.StatusCreated, w.Code)
	var created types.RecipeResponse
	decodeJSON(t, w, &created)

	path := "/api/v1/recipes/" + created.ID.String() + "/favorite"

	w = e.request(t, http.MethodPost, path, nil, fanToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var short types.RecipeShortResponse
	decodeJSON(t, w, &short)
	assert.Equal(t, created.ID, short.ID)

	w = e.request(t, http.MethodPost, path, nil, fanToken)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already in favorites")

	// The flag shows up for the fan, not for anonymous readers.
	w = e.request(t, http.MethodGet, "/api/v1/recipes/"+created.ID.String(), nil, fanToken)
	require.Equal(t, http.StatusOK, w.Code)
	var got types.RecipeResponse
	decodeJSON(t, w, &got)
	assert.True(t, got.IsFavorited)

	w = e.request(t, http.MethodDelete, path, nil, fanToken)
	assert.Equal(t, http.StatusOK, w.Code)
	// Tolerant repeat removal.
	w = e.request(t, http.MethodDelete, path, nil, fanToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestShoppingCartDownload(t *testing.T) {
	e := setupTestEnv(t)
	token := e.registerUser(t, "buyer@example.com", "buyer")
	payload := e.createRecipePayload(t)

	w := e.request(t, http.MethodPost, "/api/v1/recipes", payload, token)
	require.Equal(t, http.StatusCreated, w.Code)
	var created types.RecipeResponse
	decodeJSON(t, w, &created)

	w = e.request(t, http.MethodPost, "/api/v1/recipes/"+created.ID.String()+"/shopping_cart", nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.request(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "shop_list.txt")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "Salt (g) - 5", w.Body.String())

	w = e.request(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecipeListPagination(t *testing.T) {
	e := setupTestEnv(t)
	author := testhelpers.CreateTestUser(t, e.db, "author@example.com", "author")
	for i := 0; i < 7; i++ {
		testhelpers.CreateTestRecipe(t, e.db, author.ID, fmt.Sprintf("recipe-%d", i))
	}

	w := e.request(t, http.MethodGet, "/api/v1/recipes", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Count    int64                  `json:"count"`
		Next     *string                `json:"next"`
		Previous *string                `json:"previous"`
		Results  []types.RecipeResponse `json:"results"`
	}
	decodeJSON(t, w, &page)
	assert.EqualValues(t, 7, page.Count)
	assert.Len(t, page.Results, 6)
	require.NotNil(t, page.Next)
	assert.Nil(t, page.Previous)
	assert.Contains(t, *page.Next, "page=2")

	w = e.request(t, http.MethodGet, "/api/v1/recipes?page=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &page)
	assert.Len(t, page.Results, 1)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)

	// The limit override shrinks the page.
	w = e.request(t, http.MethodGet, "/api/v1/recipes?limit=3", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &page)
	assert.Len(t, page.Results, 3)
	require.NotNil(t, page.Next)
	assert.Contains(t, *page.Next, "limit=3")
}
