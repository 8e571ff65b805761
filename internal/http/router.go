package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/naturlife/storefront/internal/auth"
	"github.com/naturlife/storefront/internal/config"
	"github.com/naturlife/storefront/internal/domain/user"
	"github.com/naturlife/storefront/internal/http/handlers"
	"github.com/naturlife/storefront/internal/http/middlewares"
	"github.com/naturlife/storefront/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router mounts. Optional storefront services may be nil, in
// which case their routes are not registered.
type Deps struct {
	Log      *slog.Logger
	Config   config.Config
	Verifier auth.Verifier
	Prom     *observability.Prom
	Metrics  prometheus.Gatherer
	Checks   map[string]handlers.Check

	Accounts   handlers.AccountService
	AdminUsers handlers.AdminUserService

	Catalog       handlers.CatalogService
	Reviews       handlers.ReviewService
	Carts         handlers.CartService
	Checkout      handlers.CheckoutService
	AdminProducts handlers.AdminProductService
	AdminOrders   handlers.AdminOrderService
	Dashboard     handlers.DashboardService
	AdminJobs     handlers.AdminJobService

	AdminAssetsBase string
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// ClientIP feeds the auth limiter, so X-Forwarded-For is only read from listed proxies.
	if err := r.SetTrustedProxies(d.Config.TrustedProxies); err != nil {
		logger(d).Warn("invalid TRUSTED_PROXIES, trusting none", "err", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(gin.Recovery())
	if d.Config.OTelEnabled {
		r.Use(otelgin.Middleware("storefront"))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders(d.Config.IsProd()))
	r.Use(middlewares.CORSMiddleware(d.Config.CORSOrigins))

	// ops
	health := handlers.NewHealthHandler(d.Checks)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}

	authMW := middlewares.NewAuthMiddleware(d.Verifier, d.Prom)
	requireAuth := authMW.RequireAuth()

	api := r.Group("/api")
	api.Use(middlewares.MaxBodyBytes(middlewares.DefaultMaxBodyBytes))
	api.Use(middlewares.RequireJSON())

	// auth
	authLimiter := middlewares.NewRateLimiter(10, time.Minute)
	authH := handlers.NewAuthHandler(d.Accounts, d.Config.JWTTokenTTL, d.Config.IsProd())
	{
		g := api.Group("/auth")
		g.POST("/register", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authH.Register)
		g.POST("/login", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authH.Login)
		g.POST("/logout", authH.Logout)
		g.GET("/me", requireAuth, authH.Me)
	}

	// storefront
	writeLimiter := middlewares.NewRateLimiter(30, time.Minute)
	limitWrites := writeLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP)

	if d.Catalog != nil {
		products := handlers.NewProductsHandler(d.Catalog, d.Reviews)
		api.GET("/products", products.List)
		api.GET("/products/:id", products.Get)
		if d.Reviews != nil {
			api.GET("/products/:id/reviews", products.ListReviews)
			api.POST("/products/:id/reviews", requireAuth, limitWrites, products.CreateReview)
		}
	}
	if d.Carts != nil {
		cart := handlers.NewCartHandler(d.Carts)
		api.GET("/cart", requireAuth, cart.Get)
		api.PUT("/cart/items", requireAuth, cart.SetItem)
		api.DELETE("/cart", requireAuth, cart.Clear)
	}
	if d.Checkout != nil {
		orders := handlers.NewOrdersHandler(d.Checkout)
		api.POST("/checkout", requireAuth, limitWrites, orders.Checkout)
		api.GET("/orders", requireAuth, orders.ListMine)
	}

	// Admin data routes: the middleware pair rejects early, and every service call
	// re-verifies the bearer token on its own.
	admin := api.Group("/admin", requireAuth, authMW.RequireRole(user.RoleAdmin))
	{
		users := handlers.NewAdminUsersHandler(d.AdminUsers)
		admin.GET("/users", users.List)
		admin.PATCH("/users", users.UpdateRole)
		admin.DELETE("/users", users.Delete)

		if d.AdminProducts != nil {
			products := handlers.NewAdminProductsHandler(d.AdminProducts)
			admin.GET("/products", products.List)
			admin.POST("/products", products.Create)
			admin.PUT("/products/:id", products.Update)
			admin.DELETE("/products/:id", products.Delete)
		}
		if d.AdminOrders != nil && d.Dashboard != nil {
			orders := handlers.NewAdminOrdersHandler(d.AdminOrders, d.Dashboard)
			admin.GET("/dashboard", orders.Dashboard)
			admin.GET("/orders", orders.List)
			admin.GET("/orders/:id", orders.Get)
			admin.PATCH("/orders/:id/status", orders.UpdateStatus)
		}
		if d.AdminJobs != nil {
			jobs := handlers.NewAdminJobsHandler(d.AdminJobs)
			admin.GET("/jobs", jobs.List)
			admin.GET("/jobs/:id", jobs.GetByID)
			admin.POST("/jobs/:id/retry", jobs.Retry)
			admin.POST("/jobs/retry-failed", jobs.RetryFailed)
		}
	}

	// admin pages behind the coarse gate
	shell := handlers.NewAdminShellHandler(d.AdminAssetsBase)
	pages := r.Group("/admin", middlewares.AdminPerimeter(auth.NewGate(d.Verifier), d.Prom))
	pages.GET("", shell.Serve)
	pages.GET("/*path", shell.Serve)

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondError(ctx, http.StatusNotFound, "not_found", "Route not found", nil)
	})

	return r
}

func logger(d Deps) *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}
