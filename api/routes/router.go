package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finley-aquatics/fishworks-backend/api/controllers"
	"github.com/finley-aquatics/fishworks-backend/api/middleware"
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
	"github.com/finley-aquatics/fishworks-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions sessionManager,
	authService authsvc.Service,
	userService users.Service,
	catalogService catalog.Service,
	categoryService categories.Service,
	addressService address.Service,
	checkoutService checkoutsvc.Service,
	orderService orders.Service,
	articleService articles.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/logout", controllers.AuthLogout(cfg.JWT, sessions, logg))
		r.Post("/refresh", controllers.AuthRefresh(cfg.JWT, sessions, logg))
	})

	// Public storefront reads.
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(catalogService, logg))
		r.Get("/products/{productID}", controllers.GetProduct(catalogService, logg))
		r.Get("/categories", controllers.ListCategories(categoryService, logg))
		r.Get("/categories/{categorySlug}", controllers.GetCategory(categoryService, logg))
		r.Get("/articles", controllers.ListArticles(articleService, logg))
		r.Get("/articles/{articleSlug}", controllers.GetArticle(articleService, logg))
		r.Get("/article-categories", controllers.ListArticleCategories(articleService, logg))

		// Account-scoped routes.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", controllers.Me(userService, logg))
				r.Patch("/profile", controllers.UpdateProfile(userService, logg))
			})
			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.ListAddresses(addressService, logg))
				r.Post("/", controllers.CreateAddress(addressService, logg))
				r.Get("/{addressID}", controllers.GetAddress(addressService, logg))
				r.Put("/{addressID}", controllers.UpdateAddress(addressService, logg))
				r.Delete("/{addressID}", controllers.DeleteAddress(addressService, logg))
				r.Post("/{addressID}/default", controllers.SetDefaultAddress(addressService, logg))
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListMyOrders(orderService, logg))
				r.Get("/{orderID}", controllers.GetMyOrder(orderService, logg))
			})
			r.Post("/checkout", controllers.Checkout(checkoutService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(userService, logg))
			r.Post("/", controllers.AdminCreateUser(userService, logg))
			r.Get("/{userID}", controllers.AdminGetUser(userService, logg))
			r.Patch("/{userID}", controllers.AdminUpdateUser(userService, logg))
			r.Delete("/{userID}", controllers.AdminDeleteUser(userService, logg))
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(catalogService, logg))
			r.Post("/", controllers.AdminCreateProduct(catalogService, logg))
			r.Get("/{productID}", controllers.AdminGetProduct(catalogService, logg))
			r.Patch("/{productID}", controllers.AdminUpdateProduct(catalogService, logg))
			r.Delete("/{productID}", controllers.AdminDeleteProduct(catalogService, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.AdminListCategories(categoryService, logg))
			r.Post("/", controllers.AdminCreateCategory(categoryService, logg))
			r.Patch("/{categoryID}", controllers.AdminUpdateCategory(categoryService, logg))
			r.Delete("/{categoryID}", controllers.AdminDeleteCategory(categoryService, logg))
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(orderService, logg))
			r.Get("/{orderID}", controllers.AdminGetOrder(orderService, logg))
			r.Patch("/{orderID}", controllers.AdminUpdateOrder(orderService, logg))
		})
		r.Route("/articles", func(r chi.Router) {
			r.Get("/", controllers.AdminListArticles(articleService, logg))
			r.Post("/", controllers.AdminCreateArticle(articleService, logg))
			r.Get("/{articleID}", controllers.AdminGetArticle(articleService, logg))
			r.Patch("/{articleID}", controllers.AdminUpdateArticle(articleService, logg))
			r.Delete("/{articleID}", controllers.AdminDeleteArticle(articleService, logg))
		})
		r.Route("/article-categories", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateArticleCategory(articleService, logg))
			r.Patch("/{categoryID}", controllers.AdminUpdateArticleCategory(articleService, logg))
			r.Delete("/{categoryID}", controllers.AdminDeleteArticleCategory(articleService, logg))
		})
	})

	return r
}
