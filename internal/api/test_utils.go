package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram-v2/backend/internal/service"
	"github.com/pageza/foodgram-v2/backend/internal/testhelpers"
	"github.com/pageza/foodgram-v2/backend/internal/types"
)

// testEnv bundles a router wired against an in-memory database.
type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	auth := service.NewAuthService(db, "test-secret")
	svcs := Services{
		Auth:         auth,
		Users:        service.NewUserService(db),
		Recipes:      service.NewRecipeService(db, nil),
		Subscription: service.NewSubscriptionService(db),
		ShoppingList: service.NewShoppingListService(db),
	}

	router := gin.New()
	RegisterRoutes(router, db, svcs, nil)
	return &testEnv{router: router, db: db, auth: auth}
}

// registerUser creates an account through the HTTP surface and returns
// its token.
func (e *testEnv) registerUser(t *testing.T, email, username string) string {
	t.Helper()

	w := e.request(t, http.MethodPost, "/api/v1/auth/register", types.RegisterRequest{
		Email:     email,
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// request performs an HTTP call against the test router. A non-nil body
// is JSON-encoded; a non-empty token becomes a bearer header.
func (e *testEnv) request(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}
