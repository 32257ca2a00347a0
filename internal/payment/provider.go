package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// CheckoutRequest describes the activation purchase for one user.
type CheckoutRequest struct {
	UserID        uint
	CustomerEmail string
	ProductName   string
	Amount        decimal.Decimal
	Currency      string
}

// CheckoutSession is a hosted checkout page created by the provider.
type CheckoutSession struct {
	ID   string
	URL  string
	Mode string
}

// CompletedCheckout is the part of a completion event the service acts on.
type CompletedCheckout struct {
	SessionID     string
	Mode          string
	CustomerEmail string
	Metadata      map[string]string
	Amount        decimal.Decimal
	Currency      string
}

// Event is a verified provider notification. Checkout is set only for
// completed checkout sessions.
type Event struct {
	ID       string
	Type     string
	Checkout *CompletedCheckout
}

// Provider is the narrow contract with the external payment processor.
type Provider interface {
	Name() string
	CheckoutConfigured() bool
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signatureHeader string) (*Event, error)
}
