package main

import (
	"os"

	"github.com/pageza/foodgram-v2/backend/config"
	"github.com/pageza/foodgram-v2/backend/internal/database"
	"github.com/pageza/foodgram-v2/backend/internal/logger"
	"github.com/pageza/foodgram-v2/backend/internal/server"
)

func main() {
	log, err := logger.New(os.Getenv("ENV"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load configuration", "error", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("failed to run migrations", "error", err)
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Warn("redis unavailable, rate limiting disabled", "error", err)
		redisClient = nil
	}

	srv, err := server.New(cfg, db, redisClient, log)
	if err != nil {
		log.Fatal("failed to build server", "error", err)
	}

	if err := srv.Start(); err != nil {
		log.Fatal("server stopped with error", "error", err)
	}
}
