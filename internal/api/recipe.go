package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram-v2/backend/internal/middleware"
	"github.com/pageza/foodgram-v2/backend/internal/service"
	"github.com/pageza/foodgram-v2/backend/internal/types"
)

// RecipeHandler handles recipe CRUD, favorites and the shopping cart
type RecipeHandler struct {
	recipeService   *service.RecipeService
	shoppingService *service.ShoppingListService
}

// NewRecipeHandler creates a new recipe handler
func NewRecipeHandler(recipeService *service.RecipeService, shoppingService *service.ShoppingListService) *RecipeHandler {
	return &RecipeHandler{
		recipeService:   recipeService,
		shoppingService: shoppingService,
	}
}

// ListRecipes handles GET /recipes
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	requester := middleware.UserIDFromContext(c)

	filter := types.RecipeListFilter{
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      boolParam(c.Query("is_favorited")),
		IsInShoppingCart: boolParam(c.Query("is_in_shopping_cart")),
	}
	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = &authorID
	}

	params := parsePageParams(c)
	recipes, count, err := h.recipeService.ListRecipes(c.Request.Context(), requester, filter, params.Offset(), params.Limit)
	if err != nil {
		respondError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, paginate(c, params, count, emptyIfNil(recipes)))
}

// GetRecipe handles GET /recipes/:id
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipeID, ok := parseIDParam(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), middleware.UserIDFromContext(c), recipeID)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// CreateRecipe handles POST /recipes
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), *userID, &req)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

// UpdateRecipe handles PATCH /recipes/:id
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	recipeID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req types.UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), *userID, recipeID, &req)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// DeleteRecipe handles DELETE /recipes/:id
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	recipeID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), *userID, recipeID); err != nil {
		respondError(c, err, "")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddFavorite handles POST /recipes/:id/favorite
func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addMembership(c, h.recipeService.AddFavorite, "recipe is already in favorites")
}

// RemoveFavorite handles DELETE /recipes/:id/favorite
func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeMembership(c, h.recipeService.RemoveFavorite, "recipe removed from favorites")
}

// AddToCart handles POST /recipes/:id/shopping_cart
func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addMembership(c, h.recipeService.AddToCart, "recipe is already in shopping cart")
}

// RemoveFromCart handles DELETE /recipes/:id/shopping_cart
func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeMembership(c, h.recipeService.RemoveFromCart, "recipe removed from shopping cart")
}

// DownloadShoppingCart handles GET /recipes/download_shopping_cart
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	content, err := h.shoppingService.BuildShoppingList(c.Request.Context(), *userID)
	if err != nil {
		respondError(c, err, "")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shop_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}

func (h *RecipeHandler) addMembership(
	c *gin.Context,
	add func(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeShortResponse, error),
	conflictMsg string,
) {
	userID := middleware.UserIDFromContext(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	recipeID, ok := parseIDParam(c)
	if !ok {
		return
	}

	short, err := add(c.Request.Context(), *userID, recipeID)
	if err != nil {
		respondError(c, err, conflictMsg)
		return
	}
	c.JSON(http.StatusCreated, short)
}

func (h *RecipeHandler) removeMembership(
	c *gin.Context,
	remove func(ctx context.Context, userID, recipeID uuid.UUID) error,
	statusMsg string,
) {
	userID := middleware.UserIDFromContext(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	recipeID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := remove(c.Request.Context(), *userID, recipeID); err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusMsg})
}

func boolParam(value string) bool {
	return value == "1" || value == "true"
}

// parseIDParam reads the :id path segment as a UUID.
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return uuid.Nil, false
	}
	return id, true
}
