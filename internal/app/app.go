// Package app assembles repositories, services and handlers.
package app

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"solarsizing/internal/auth"
	"solarsizing/internal/cache"
	"solarsizing/internal/config"
	"solarsizing/internal/handler"
	"solarsizing/internal/payment"
	"solarsizing/internal/repository"
	"solarsizing/internal/router"
	"solarsizing/internal/service"
)

// Dependencies are the external resources the application runs on.
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *gorm.DB
	Cache    *cache.Client
	Provider payment.Provider
	Hasher   service.PasswordHasher
}

// Services is the wired service layer.
type Services struct {
	Auth       service.AuthService
	Projects   service.ProjectService
	Resources  service.ResourceService
	Payments   service.PaymentService
	Activation service.ActivationService
	Events     *service.PaymentEventRecorder
}

// NewServices wires repositories into services. Close Services.Events on
// shutdown to flush pending payment events.
func NewServices(deps Dependencies) (*Services, error) {
	cfg := deps.Config

	jwtService, err := auth.NewJWTService(cfg.SecretKey, cfg.Algorithm, cfg.AccessTokenTTL())
	if err != nil {
		return nil, err
	}
	hasher := deps.Hasher
	if hasher == nil {
		hasher = auth.NewPasswordHasher(auth.DefaultArgon2Params)
	}
	provider := deps.Provider
	if provider == nil {
		provider = payment.NewStripeProvider(payment.StripeConfig{
			SecretKey:      cfg.StripeSecretKey,
			WebhookSecret:  cfg.StripeWebhookSecret,
			FrontendDomain: cfg.FrontendDomain,
		}, deps.Logger)
	}

	// Initialize repositories
	db := deps.DB
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	events := service.NewPaymentEventRecorder(repository.NewPaymentEventRepository(db), deps.Logger)
	activation := service.NewActivationService(repository.NewStore(db), events, deps.Logger)

	return &Services{
		Auth: service.NewAuthService(userRepo, hasher, jwtService, auth.NewTokenStore(deps.Cache), deps.Cache, deps.Logger),
		Projects: service.NewProjectService(
			projectRepo,
			repository.NewInputsRepository(db),
			repository.NewCalculationRepository(db),
			deps.Logger,
		),
		Resources: service.NewResourceService(service.ResourceRepositories{
			Projects:       projectRepo,
			Visualizations: repository.NewVisualizationRepository(db),
			Reports:        repository.NewReportRepository(db),
			Notifications:  repository.NewNotificationRepository(db),
			SocialLinks:    repository.NewSocialLinkRepository(db),
			Dashboards:     repository.NewDashboardRepository(db),
		}),
		Payments: service.NewPaymentService(
			provider,
			paymentRepo,
			repository.NewPaymentMethodRepository(db),
			activation,
			deps.Cache,
			events,
			service.ActivationFee{Amount: cfg.ActivationFee, Currency: cfg.ActivationCurrency},
			deps.Logger,
		),
		Activation: activation,
		Events:     events,
	}, nil
}

// Handlers builds the HTTP handlers over s.
func (s *Services) Handlers() router.Handlers {
	return router.Handlers{
		Auth:      handler.NewAuthHandler(s.Auth),
		Projects:  handler.NewProjectHandler(s.Projects),
		Resources: handler.NewResourceHandler(s.Resources),
		Payments:  handler.NewPaymentHandler(s.Payments),
	}
}
