package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/pdf"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/validation"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := validation.RegisterGinValidators(); err != nil {
		logging.Fatal().Err(err).Msg("failed to register validators")
	}

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(cfg)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	}

	var denylist service.TokenDenylist = service.NewMemoryDenylist()
	if redisClient != nil {
		denylist = service.NewRedisDenylist(redisClient)
	}

	store, err := newImageStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to configure image storage")
	}

	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, denylist)
	recipeService := service.NewRecipeService(db, service.NewImageService(store), service.RecipeLimits{
		CookingTimeMin: cfg.CookingTimeMin,
		CookingTimeMax: cfg.CookingTimeMax,
		AmountMin:      cfg.AmountMin,
		AmountMax:      cfg.AmountMax,
	})
	shoppingList := service.NewShoppingListService(db, pdf.NewShoppingListRenderer(cfg.FontPath, ""))

	recipes := api.NewRecipeHandler(
		recipeService,
		service.NewRelationService(db),
		shoppingList,
		authService,
		cfg.PageSize,
	)
	if redisClient != nil && cfg.RecipeCreateLimit > 0 {
		recipes.WithCreationLimiter(middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit))
	}

	srv := server.New(cfg, db, api.Handlers{
		Auth:    api.NewAuthHandler(authService),
		Users:   api.NewUserHandler(service.NewUserService(db), authService, cfg.PageSize),
		Catalog: api.NewCatalogHandler(service.NewCatalogService(db)),
		Recipes: recipes,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logging.Fatal().Err(err).Msg("server error")
		}
		return
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("received signal")
	}

	logging.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("server shutdown error")
		return
	}
	logging.Info().Msg("server stopped")
}

func newImageStore(cfg *config.Config) (service.ImageStore, error) {
	if cfg.StorageBackend != config.StorageS3 {
		return service.NewLocalImageStore(cfg.MediaRoot, cfg.MediaURL), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s3Config, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return service.NewS3ImageStore(s3Config), nil
}
