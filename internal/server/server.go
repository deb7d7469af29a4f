package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram-v2/backend/config"
	"github.com/pageza/foodgram-v2/backend/internal/api"
	"github.com/pageza/foodgram-v2/backend/internal/logger"
	"github.com/pageza/foodgram-v2/backend/internal/middleware"
	"github.com/pageza/foodgram-v2/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	cfg    *config.Config
	log    *logger.Logger
}

// New wires services, middleware and routes into a runnable server.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *logger.Logger) (*Server, error) {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	images, err := service.NewImageService(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	svcs := api.Services{
		Auth:         service.NewAuthService(db, cfg.JWTSecret),
		Users:        service.NewUserService(db),
		Recipes:      service.NewRecipeService(db, images),
		Subscription: service.NewSubscriptionService(db),
		ShoppingList: service.NewShoppingListService(db),
	}

	router := gin.Default()
	router.Use(middleware.CORS())
	api.RegisterRoutes(router, db, svcs, redisClient)

	return &Server{router: router, cfg: cfg, log: log}, nil
}

// Start runs the server until SIGINT or SIGTERM, then shuts down
// gracefully.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:    s.cfg.ServerHost + ":" + s.cfg.ServerPort,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		s.log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
