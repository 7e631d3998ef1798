package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/finley-aquatics/fishworks-backend/api/routes"
	"github.com/finley-aquatics/fishworks-backend/internal/address"
	"github.com/finley-aquatics/fishworks-backend/internal/articles"
	authsvc "github.com/finley-aquatics/fishworks-backend/internal/auth"
	"github.com/finley-aquatics/fishworks-backend/internal/catalog"
	"github.com/finley-aquatics/fishworks-backend/internal/categories"
	checkoutsvc "github.com/finley-aquatics/fishworks-backend/internal/checkout"
	"github.com/finley-aquatics/fishworks-backend/internal/orders"
	"github.com/finley-aquatics/fishworks-backend/internal/users"
	"github.com/finley-aquatics/fishworks-backend/pkg/auth/session"
	"github.com/finley-aquatics/fishworks-backend/pkg/config"
	"github.com/finley-aquatics/fishworks-backend/pkg/db"
	"github.com/finley-aquatics/fishworks-backend/pkg/logger"
	"github.com/finley-aquatics/fishworks-backend/pkg/metrics"
	"github.com/finley-aquatics/fishworks-backend/pkg/migrate"
	"github.com/finley-aquatics/fishworks-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	categoryRepo := categories.NewRepository(dbClient.DB())
	addressRepo := address.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	articleRepo := articles.NewRepository(dbClient.DB())
	articleCategoryRepo := articles.NewCategoryRepository(dbClient.DB())

	userService, err := users.NewService(userRepo, dbClient, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:       userRepo,
		Registrar:      userService,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	categoryService, err := categories.NewService(categoryRepo, dbClient, redisClient, cfg.Catalog)
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}

	addressService, err := address.NewService(addressRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create address service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orderRepo, catalogRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(
		dbClient,
		orderRepo,
		catalogRepo,
		addressRepo,
		metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	articleService, err := articles.NewService(articleRepo, articleCategoryRepo, dbClient, redisClient, cfg.Articles)
	if err != nil {
		logg.Error(context.Background(), "failed to create article service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			authService,
			userService,
			catalogService,
			categoryService,
			addressService,
			checkoutService,
			orderService,
			articleService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
