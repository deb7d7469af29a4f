package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram-v2/backend/internal/testhelpers"
	"github.com/pageza/foodgram-v2/backend/internal/types"
)

func TestRegisterAndLoginEndpoints(t *testing.T) {
	e := setupTestEnv(t)

	w := e.request(t, http.MethodPost, "/api/v1/auth/register", types.RegisterRequest{
		Email:     "cook@example.com",
		Username:  "cook",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Duplicate registration is rejected.
	w = e.request(t, http.MethodPost, "/api/v1/auth/register", types.RegisterRequest{
		Email:     "cook@example.com",
		Username:  "cook2",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "secret123",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email already registered")

	// Malformed payload fails binding.
	w = e.request(t, http.MethodPost, "/api/v1/auth/register", map[string]string{"email": "nope"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.request(t, http.MethodPost, "/api/v1/auth/login", types.LoginRequest{
		Email:    "cook@example.com",
		Password: "secret123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "token")

	w = e.request(t, http.MethodPost, "/api/v1/auth/login", types.LoginRequest{
		Email:    "cook@example.com",
		Password: "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCurrentUserEndpoint(t *testing.T) {
	e := setupTestEnv(t)
	token := e.registerUser(t, "cook@example.com", "cook")

	w := e.request(t, http.MethodGet, "/api/v1/users/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var me types.UserResponse
	decodeJSON(t, w, &me)
	assert.Equal(t, "cook", me.Username)

	w = e.request(t, http.MethodGet, "/api/v1/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSetPasswordEndpoint(t *testing.T) {
	e := setupTestEnv(t)
	token := e.registerUser(t, "cook@example.com", "cook")

	w := e.request(t, http.MethodPost, "/api/v1/users/set_password", types.SetPasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newsecret1",
	}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "current password is incorrect")

	w = e.request(t, http.MethodPost, "/api/v1/users/set_password", types.SetPasswordRequest{
		CurrentPassword: "secret123",
		NewPassword:     "newsecret1",
	}, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = e.request(t, http.MethodPost, "/api/v1/auth/login", types.LoginRequest{
		Email:    "cook@example.com",
		Password: "newsecret1",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubscriptionEndpoints(t *testing.T) {
	e := setupTestEnv(t)
	token := e.registerUser(t, "follower@example.com", "follower")
	author := testhelpers.CreateTestUser(t, e.db, "chef@example.com", "chef")
	testhelpers.CreateTestRecipe(t, e.db, author.ID, "Borscht")

	path := "/api/v1/users/" + author.ID.String() + "/subscribe"

	w := e.request(t, http.MethodPost, path, nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sub types.SubscriptionResponse
	decodeJSON(t, w, &sub)
	assert.Equal(t, "chef", sub.Username)
	assert.True(t, sub.IsSubscribed)
	assert.EqualValues(t, 1, sub.RecipesCount)

	w = e.request(t, http.MethodPost, path, nil, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already subscribed")

	w = e.request(t, http.MethodGet, "/api/v1/users/subscriptions", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Count   int64                        `json:"count"`
		Results []types.SubscriptionResponse `json:"results"`
	}
	decodeJSON(t, w, &page)
	assert.EqualValues(t, 1, page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "chef", page.Results[0].Username)

	w = e.request(t, http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	// Unlike favorites, a repeat unsubscribe is an error.
	w = e.request(t, http.MethodDelete, path, nil, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not subscribed")

	w = e.request(t, http.MethodPost, path, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListUsersEndpoint(t *testing.T) {
	e := setupTestEnv(t)
	testhelpers.CreateTestUser(t, e.db, "anna@example.com", "anna")
	testhelpers.CreateTestUser(t, e.db, "bob@example.com", "bob")

	w := e.request(t, http.MethodGet, "/api/v1/users?search=an", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Count   int64                `json:"count"`
		Results []types.UserResponse `json:"results"`
	}
	decodeJSON(t, w, &page)
	assert.EqualValues(t, 1, page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "anna", page.Results[0].Username)
}
