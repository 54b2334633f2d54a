package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mesi0621/storefront-gateway/internal/api/handler"
	"github.com/mesi0621/storefront-gateway/internal/api/middleware"
	"github.com/mesi0621/storefront-gateway/internal/core/domain"
	"github.com/mesi0621/storefront-gateway/internal/core/ports"
	"github.com/mesi0621/storefront-gateway/internal/session"
)

// RouterDeps carries everything the HTTP layer needs. The raw Redis and
// Mongo clients are only used by the readiness probe.
type RouterDeps struct {
	Sessions   *session.Manager
	Store      ports.LocalStore
	SessionTTL time.Duration
	Redis      *redis.Client
	Mongo      *mongo.Client
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("storefront"))

	// --- Health probes and metrics (no session required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Redis, deps.Mongo)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Session-scoped routes ---
	withSession := middleware.Session(deps.Sessions, deps.SessionTTL)
	s := e.Group("", withSession)

	authHandler := handler.NewAuthHandler()
	s.POST("/auth/login", authHandler.Login)
	s.POST("/auth/signup", authHandler.Signup)
	s.POST("/auth/logout", authHandler.Logout)
	s.GET("/auth/me", authHandler.Me)

	cartHandler := handler.NewCartHandler()
	s.GET("/cart", cartHandler.View)
	s.GET("/cart/summary", cartHandler.Summary)
	s.POST("/cart/refresh", cartHandler.Refresh)
	s.POST("/cart/items/:productId", cartHandler.AddItem)
	s.DELETE("/cart/items/:productId", cartHandler.RemoveItem)

	checkoutHandler := handler.NewCheckoutHandler()
	s.POST("/checkout/sync", checkoutHandler.Sync, middleware.Guard(middleware.GuardConfig{
		RequireAuth: true,
	}))

	prefsHandler := handler.NewPreferencesHandler(deps.Store)
	s.GET("/preferences/theme", prefsHandler.GetTheme)
	s.PUT("/preferences/theme", prefsHandler.PutTheme)

	// One dashboard for all staff roles; sections come from the identity's
	// capabilities rather than per-role routes.
	dashboardHandler := handler.NewDashboardHandler()
	s.GET("/dashboard", dashboardHandler.View, middleware.Guard(middleware.GuardConfig{
		RequireAuth: true,
		Roles: []domain.Role{
			domain.RoleAdmin, domain.RoleSeller, domain.RoleDelivery,
			domain.RoleSupport, domain.RoleFinance,
		},
	}))
	s.GET("/dashboard/finance", dashboardHandler.Finance, middleware.Guard(middleware.GuardConfig{
		Permissions: []domain.Permission{domain.NewPermission("finance", "view")},
	}))

	// Admin surface hides its existence from non-admins and walks
	// unauthenticated visitors to the login page.
	admin := s.Group("/admin",
		middleware.Guard(middleware.GuardConfig{
			RequireAuth:  true,
			Deny:         middleware.DenyRedirect,
			FallbackPath: "/login",
		}),
		middleware.Guard(middleware.GuardConfig{
			Roles: []domain.Role{domain.RoleAdmin},
			Deny:  middleware.DenyNothing,
		}),
	)
	admin.GET("/dashboard", dashboardHandler.View)

	return e
}
