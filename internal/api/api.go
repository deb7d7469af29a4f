package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram-v2/backend/internal/middleware"
	"github.com/pageza/foodgram-v2/backend/internal/service"
)

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Foodgram API is running",
		"version": "v1.0.0",
	})
}

// Services bundles everything the route table depends on.
type Services struct {
	Auth         *service.AuthService
	Users        *service.UserService
	Recipes      *service.RecipeService
	Subscription *service.SubscriptionService
	ShoppingList *service.ShoppingListService
}

// RegisterRoutes registers all API routes. redisClient may be nil, in
// which case recipe writes are not rate limited.
func RegisterRoutes(router *gin.Engine, db *gorm.DB, svcs Services, redisClient *redis.Client) {
	router.GET("/health", HealthCheck)
	router.GET("/api/health", HealthCheck)

	authHandler := NewAuthHandler(svcs.Auth)
	userHandler := NewUserHandler(svcs.Users, svcs.Auth, svcs.Subscription)
	recipeHandler := NewRecipeHandler(svcs.Recipes, svcs.ShoppingList)
	catalogHandler := NewCatalogHandler(db)

	var writeLimiter gin.HandlerFunc
	if redisClient != nil {
		limiter := middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Window:    time.Hour,
			Limit:     30,
			KeyPrefix: "rate_limit:recipe_write",
		})
		writeLimiter = limiter.RateLimitMiddleware()
	} else {
		writeLimiter = func(c *gin.Context) { c.Next() }
	}

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	optionalAuth := middleware.OptionalAuthMiddleware(svcs.Auth)
	requireAuth := middleware.AuthMiddleware(svcs.Auth)

	users := v1.Group("/users")
	{
		users.GET("", optionalAuth, userHandler.ListUsers)
		users.GET("/me", requireAuth, userHandler.GetCurrentUser)
		users.GET("/subscriptions", requireAuth, userHandler.ListSubscriptions)
		users.POST("/set_password", requireAuth, userHandler.SetPassword)
		users.GET("/:id", optionalAuth, userHandler.GetUser)
		users.POST("/:id/subscribe", requireAuth, userHandler.Subscribe)
		users.DELETE("/:id/subscribe", requireAuth, userHandler.Unsubscribe)
	}

	recipes := v1.Group("/recipes")
	{
		recipes.GET("", optionalAuth, recipeHandler.ListRecipes)
		recipes.GET("/download_shopping_cart", requireAuth, recipeHandler.DownloadShoppingCart)
		recipes.GET("/:id", optionalAuth, recipeHandler.GetRecipe)
		recipes.POST("", requireAuth, writeLimiter, recipeHandler.CreateRecipe)
		recipes.PATCH("/:id", requireAuth, writeLimiter, recipeHandler.UpdateRecipe)
		recipes.DELETE("/:id", requireAuth, recipeHandler.DeleteRecipe)
		recipes.POST("/:id/favorite", requireAuth, recipeHandler.AddFavorite)
		recipes.DELETE("/:id/favorite", requireAuth, recipeHandler.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", requireAuth, recipeHandler.AddToCart)
		recipes.DELETE("/:id/shopping_cart", requireAuth, recipeHandler.RemoveFromCart)
	}

	tags := v1.Group("/tags")
	{
		tags.GET("", catalogHandler.ListTags)
		tags.GET("/:id", catalogHandler.GetTag)
	}

	ingredients := v1.Group("/ingredients")
	{
		ingredients.GET("", catalogHandler.ListIngredients)
		ingredients.GET("/:id", catalogHandler.GetIngredient)
	}
}
