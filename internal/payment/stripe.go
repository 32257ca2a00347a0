package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	apperrors "solarsizing/internal/errors"
)

// StripeConfig holds Stripe credentials and redirect targets.
type StripeConfig struct {
	SecretKey      string
	WebhookSecret  string
	FrontendDomain string
}

// StripeProvider creates Checkout sessions and verifies webhook signatures.
type StripeProvider struct {
	cfg    StripeConfig
	api    *client.API
	logger *zap.Logger
}

var _ Provider = (*StripeProvider)(nil)

// NewStripeProvider creates a Stripe provider. Without a secret key checkout is
// unavailable, but webhooks can still be verified.
func NewStripeProvider(cfg StripeConfig, logger *zap.Logger) *StripeProvider {
	p := &StripeProvider{
		cfg:    cfg,
		logger: logger.Named("stripe"),
	}
	if cfg.SecretKey != "" {
		p.api = &client.API{}
		p.api.Init(cfg.SecretKey, nil)
	}
	return p
}

func (p *StripeProvider) Name() string { return "stripe" }

func (p *StripeProvider) CheckoutConfigured() bool { return p.api != nil }

// CreateCheckoutSession starts a one-off card payment for the activation fee.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if p.api == nil {
		return nil, apperrors.ErrPaymentProviderUnconfigured
	}

	userID := strconv.FormatUint(uint64(req.UserID), 10)
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		CustomerEmail:      stripe.String(req.CustomerEmail),
		ClientReferenceID:  stripe.String(userID),
		SuccessURL:         stripe.String(p.cfg.FrontendDomain + "/payments/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(p.cfg.FrontendDomain + "/payments/cancel"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(req.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
					UnitAmount: stripe.Int64(MinorUnits(req.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("user_id", userID)

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		p.logger.Error("create checkout session failed", zap.Uint("user_id", req.UserID), zap.Error(err))
		return nil, &apperrors.ProviderError{Message: stripeMessage(err), Err: err}
	}

	return &CheckoutSession{ID: s.ID, URL: s.URL, Mode: string(s.Mode)}, nil
}

// ParseWebhook verifies the Stripe-Signature header (t=<ts>,v1=<hex hmac>)
// against the raw body and decodes the event.
func (p *StripeProvider) ParseWebhook(payload []byte, signatureHeader string) (*Event, error) {
	if p.cfg.WebhookSecret == "" {
		return nil, apperrors.ErrWebhookSecretMissing
	}
	if signatureHeader == "" {
		return nil, apperrors.ErrMissingSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, p.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		p.logger.Warn("webhook verification failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidWebhookSignature, err)
	}

	out := &Event{ID: event.ID, Type: string(event.Type)}
	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return out, nil
	}
	if event.Data == nil {
		return nil, apperrors.ErrInvalidWebhookSignature
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("%w: decode checkout session: %v", apperrors.ErrInvalidWebhookSignature, err)
	}
	out.Checkout = &CompletedCheckout{
		SessionID:     session.ID,
		Mode:          string(session.Mode),
		CustomerEmail: session.CustomerEmail,
		Metadata:      session.Metadata,
		Amount:        decimal.New(session.AmountTotal, -2),
		Currency:      string(session.Currency),
	}
	return out, nil
}

// MinorUnits converts an amount to the smallest currency unit (cents).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func stripeMessage(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return err.Error()
}
