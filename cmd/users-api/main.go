package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/users-api/internal/config"
	"github.com/vasiliy-maslov/users-api/internal/db"
	userHttp "github.com/vasiliy-maslov/users-api/internal/handler/http"
	"github.com/vasiliy-maslov/users-api/internal/logger"
	"github.com/vasiliy-maslov/users-api/internal/server"
	"github.com/vasiliy-maslov/users-api/internal/user"
)

const connectTimeout = 10 * time.Second

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Setup(cfg.App.Name, cfg.App.Env, cfg.App.LogLevel)
	log.Info().Str("env", cfg.App.Env).Msg("Starting users-api...")

	if err := db.ApplyMigrations(cfg.Postgres); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	pg, err := db.New(connectCtx, cfg.Postgres)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	userRepository := user.NewRepository(pg.Pool)
	userService := user.NewService(userRepository)
	userHandler := userHttp.NewUserHandler(userService)

	router, err := server.NewRouter(server.Deps{
		HTTP:  cfg.HTTP,
		DB:    pg,
		Users: userHandler,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build router")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.App.Port, cfg.HTTP, router)
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		pg.Close()
		os.Exit(1)
	}

	log.Info().Msg("users-api stopped gracefully")
}
