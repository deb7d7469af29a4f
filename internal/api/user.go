package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram-v2/backend/internal/middleware"
	"github.com/pageza/foodgram-v2/backend/internal/service"
	"github.com/pageza/foodgram-v2/backend/internal/types"
)

// UserHandler handles user lookup, password changes and subscriptions
type UserHandler struct {
	userService         *service.UserService
	authService         *service.AuthService
	subscriptionService *service.SubscriptionService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService, authService *service.AuthService, subscriptionService *service.SubscriptionService) *UserHandler {
	return &UserHandler{
		userService:         userService,
		authService:         authService,
		subscriptionService: subscriptionService,
	}
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	requester := middleware.UserIDFromContext(c)
	params := parsePageParams(c)

	users, count, err := h.userService.ListUsers(c.Request.Context(), requester, c.Query("search"), params.Offset(), params.Limit)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, paginate(c, params, count, emptyIfNil(users)))
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), middleware.UserIDFromContext(c), userID)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetCurrentUser handles GET /users/me
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID, *userID)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, user)
}

// SetPassword handles POST /users/set_password
func (h *UserHandler) SetPassword(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req types.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.SetPassword(c.Request.Context(), *userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err, "")
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscribe handles POST /users/:id/subscribe
func (h *UserHandler) Subscribe(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	authorID, ok := parseIDParam(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.Subscribe(c.Request.Context(), *userID, authorID, recipesLimitParam(c))
	if err != nil {
		respondError(c, err, "already subscribed to this author")
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// Unsubscribe handles DELETE /users/:id/subscribe
func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	authorID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.subscriptionService.Unsubscribe(c.Request.Context(), *userID, authorID); err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unsubscribed"})
}

// ListSubscriptions handles GET /users/subscriptions
func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	params := parsePageParams(c)

	subs, count, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), *userID, params.Offset(), params.Limit, recipesLimitParam(c))
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, paginate(c, params, count, emptyIfNil(subs)))
}

// recipesLimitParam caps how many recipe previews come back with each
// subscribed author. Zero means no cap.
func recipesLimitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
