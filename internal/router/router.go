package router

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"solarsizing/internal/config"
	"solarsizing/internal/handler"
	"solarsizing/internal/logger"
	"solarsizing/internal/middleware"
	"solarsizing/internal/service"
)

// webhookBodyLimit caps Stripe webhook bodies; larger ones get 413.
const webhookBodyLimit = "256K"

// Handlers groups the HTTP handlers.
type Handlers struct {
	Auth      *handler.AuthHandler
	Projects  *handler.ProjectHandler
	Resources *handler.ResourceHandler
	Payments  *handler.PaymentHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, log *zap.Logger, authService service.AuthService, h Handlers) {
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = NewValidator()

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Recover())
	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType},
		AllowCredentials: !allowsAnyOrigin(cfg.AllowedOrigins),
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Route-level middleware keeps unknown paths as 404 instead of 401.
	authenticated := []echo.MiddlewareFunc{middleware.Authenticate(authService)}
	active := []echo.MiddlewareFunc{middleware.Authenticate(authService), middleware.RequireActive}

	// Public routes
	e.POST("/auth/register", h.Auth.Register)
	e.POST("/auth/login", h.Auth.Login)
	e.POST("/payments/webhook/stripe", h.Payments.StripeWebhook, echomw.BodyLimit(webhookBodyLimit))

	// Token only, so inactive users can pay
	e.GET("/auth/me", h.Auth.Me, authenticated...)
	e.POST("/auth/logout", h.Auth.Logout, authenticated...)
	e.GET("/payments/me", h.Payments.GetPaymentMethod, authenticated...)
	e.POST("/payments/checkout", h.Payments.Checkout, authenticated...)

	// Project routes
	e.POST("/projects", h.Projects.CreateProject, active...)
	e.GET("/projects", h.Projects.ListProjects, active...)
	e.POST("/projects/:id/inputs", h.Projects.SaveInputs, active...)
	e.GET("/projects/:id/inputs/latest", h.Projects.LatestInputs, active...)
	e.POST("/projects/:id/calculate", h.Projects.Calculate, active...)
	e.GET("/projects/:id/calculations", h.Projects.ListCalculations, active...)
	e.POST("/projects/:id/visualizations", h.Resources.CreateVisualization, active...)
	e.GET("/projects/:id/visualizations", h.Resources.ListVisualizations, active...)
	e.POST("/projects/:id/reports", h.Resources.CreateReport, active...)
	e.GET("/projects/:id/reports", h.Resources.ListReports, active...)

	// User routes
	e.POST("/users/me/social-links", h.Resources.CreateSocialLink, active...)
	e.GET("/users/me/social-links", h.Resources.ListSocialLinks, active...)
	e.POST("/users/me/dashboards", h.Resources.CreateDashboard, active...)
	e.GET("/users/me/dashboards", h.Resources.ListDashboards, active...)
	e.POST("/notifications", h.Resources.CreateNotification, active...)
	e.GET("/notifications", h.Resources.ListNotifications, active...)
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
