package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pageza/cibaria/backend/config"
	"github.com/pageza/cibaria/backend/internal/api"
	"github.com/pageza/cibaria/backend/internal/auth"
	"github.com/pageza/cibaria/backend/internal/database"
	"github.com/pageza/cibaria/backend/internal/logging"
	"github.com/pageza/cibaria/backend/internal/metrics"
	"github.com/pageza/cibaria/backend/internal/middleware"
	"github.com/pageza/cibaria/backend/internal/server"
	"github.com/pageza/cibaria/backend/internal/service"
	"github.com/pageza/cibaria/backend/internal/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	bootLog := logging.New(logging.Config{Level: os.Getenv("LOG_LEVEL"), Format: os.Getenv("LOG_FORMAT")})

	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logging.SetGlobal(log)
	log.Info().Str("environment", string(cfg.Environment)).Msg("configuration loaded")

	db, err := database.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.RunMigrations(db.DB, cfg.MigrationsDir, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	images, err := newImageStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure image storage")
	}

	m := metrics.New()
	recipes := service.NewRecipeService(db.DB, images,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithImageTimeout(cfg.ImageTimeout),
	)

	deps := api.Dependencies{
		Recipes:  recipes,
		Claims:   auth.NewClaimsReader(cfg.JWTSecret, cfg.JWTIssuer),
		Database: db,
		Metrics:  m,
	}

	// Rate limiting is skipped when redis is unreachable.
	redisClient, err := database.NewRedisClient(cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
	} else {
		defer closeRedis(redisClient, log)
		deps.CreateLimiter = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit, log)
		deps.ModifyLimiter = middleware.NewRecipeModificationRateLimiter(redisClient, cfg.RecipeModifyLimit, log)
	}

	srv := server.New(cfg, deps, log)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Error().Err(err).Msg("server error")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("received signal")
	}

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	log.Info().Msg("server stopped")
}

func newImageStore(cfg *config.Config, log zerolog.Logger) (*storage.ResilientStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s3cfg, err := config.NewS3Config(ctx, cfg.S3)
	if err != nil {
		return nil, err
	}
	if cfg.S3.PublicRead {
		if err := s3cfg.SetupBucketPolicy(ctx); err != nil {
			log.Warn().Err(err).Str("bucket", s3cfg.BucketName).Msg("failed to set public bucket policy")
		}
	}

	return storage.NewResilientStore(storage.NewS3Store(s3cfg, log), storage.DefaultBreakerConfig(), log), nil
}

func closeRedis(client *redis.Client, log zerolog.Logger) {
	if err := client.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close redis client")
	}
}
