package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"solarsizing/internal/cache"
	apperrors "solarsizing/internal/errors"
	"solarsizing/internal/model"
	"solarsizing/internal/payment"
	"solarsizing/internal/repository"
)

const (
	activationProductName = "Solar Sizing activation"
	mobileCheckoutDetail  = "Mobile payment flow unchanged"
	webhookEventTTL       = 24 * time.Hour
	webhookEventKeyPrefix = "stripe:event:"
)

// ActivationFee is the one-off price that activates an account.
type ActivationFee struct {
	Amount   decimal.Decimal
	Currency string
}

// CheckoutResult is either a hosted checkout session or, for mobile money, a
// passthrough message.
type CheckoutResult struct {
	Provider    string
	CheckoutURL string
	SessionID   string
	Detail      string
}

// PaymentService handles payment methods, checkout and provider webhooks.
type PaymentService interface {
	GetPaymentMethod(ctx context.Context, userID uint) (*model.PaymentMethod, error)
	StartCheckout(ctx context.Context, user *model.User, provider string) (*CheckoutResult, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type paymentService struct {
	provider    payment.Provider
	paymentRepo repository.PaymentRepository
	methodRepo  repository.PaymentMethodRepository
	activation  ActivationService
	cache       *cache.Client
	recorder    EventRecorder
	fee         ActivationFee
	logger      *zap.Logger
	now         func() time.Time
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	provider payment.Provider,
	paymentRepo repository.PaymentRepository,
	methodRepo repository.PaymentMethodRepository,
	activation ActivationService,
	cache *cache.Client,
	recorder EventRecorder,
	fee ActivationFee,
	logger *zap.Logger,
) PaymentService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &paymentService{
		provider:    provider,
		paymentRepo: paymentRepo,
		methodRepo:  methodRepo,
		activation:  activation,
		cache:       cache,
		recorder:    recorder,
		fee:         fee,
		logger:      logger.Named("payments"),
		now:         time.Now,
	}
}

// GetPaymentMethod returns the user's first stored payment method.
func (s *paymentService) GetPaymentMethod(ctx context.Context, userID uint) (*model.PaymentMethod, error) {
	method, err := s.methodRepo.FindFirstByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrPaymentMethodNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find payment method: %w", err)
	}
	return method, nil
}

// StartCheckout opens a checkout for the activation fee and records a pending
// payment keyed by the session id.
func (s *paymentService) StartCheckout(ctx context.Context, user *model.User, provider string) (*CheckoutResult, error) {
	if strings.EqualFold(provider, model.ProviderMobile) {
		return &CheckoutResult{Provider: model.ProviderMobile, Detail: mobileCheckoutDetail}, nil
	}
	if !s.provider.CheckoutConfigured() {
		return nil, apperrors.ErrPaymentProviderUnconfigured
	}

	session, err := s.provider.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		UserID:        user.ID,
		CustomerEmail: user.Email,
		ProductName:   activationProductName,
		Amount:        s.fee.Amount,
		Currency:      s.fee.Currency,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	sessionID := session.ID
	record := &model.Payment{
		UserID:       user.ID,
		Provider:     s.provider.Name(),
		Status:       model.PaymentStatusPending,
		ExternalID:   &sessionID,
		Amount:       s.fee.Amount,
		Currency:     strings.ToLower(s.fee.Currency),
		MetadataJSON: datatypes.JSONMap{"mode": session.Mode},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.paymentRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("record pending payment: %w", err)
	}

	userID := user.ID
	s.recorder.Record(model.PaymentEvent{
		UserID:     &userID,
		Provider:   s.provider.Name(),
		EventType:  EventCheckoutStarted,
		ExternalID: sessionID,
	})
	s.logger.Info("checkout started", zap.Uint("user_id", user.ID), zap.String("session_id", sessionID))

	return &CheckoutResult{
		Provider:    s.provider.Name(),
		CheckoutURL: session.URL,
		SessionID:   sessionID,
	}, nil
}

// HandleWebhook verifies a provider notification and applies it. Event ids are
// remembered so redelivered events are skipped; activation is idempotent on
// its own when the cache is unavailable.
func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}

	key := webhookEventKeyPrefix + event.ID
	if event.ID != "" && !s.cache.SetNX(ctx, key, []byte("1"), webhookEventTTL) {
		s.logger.Info("webhook event already processed", zap.String("event_id", event.ID))
		s.recorder.Record(model.PaymentEvent{
			Provider:   s.provider.Name(),
			EventType:  EventWebhookDuplicate,
			ExternalID: event.ID,
		})
		return nil
	}

	if event.Checkout == nil {
		s.logger.Debug("webhook event ignored", zap.String("event_id", event.ID), zap.String("type", event.Type))
		return nil
	}

	if _, err := s.activation.CompleteCheckout(ctx, s.provider.Name(), *event.Checkout); err != nil {
		if event.ID != "" {
			_ = s.cache.Delete(ctx, key)
		}
		return err
	}
	return nil
}
