package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "solarsizing/internal/errors"
)

const testSecret = "whsec_test_secret"

func sign(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts.Unix(), payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func completedPayload(sessionID string, userID string) []byte {
	return []byte(fmt.Sprintf(`{
  "id": "evt_1",
  "object": "event",
  "type": "checkout.session.completed",
  "data": {"object": {
    "id": %q,
    "object": "checkout.session",
    "mode": "payment",
    "amount_total": 4900,
    "currency": "usd",
    "customer_email": "a@example.com",
    "metadata": {"user_id": %q}
  }}
}`, sessionID, userID))
}

func TestParseWebhook_CheckoutCompleted(t *testing.T) {
	p := NewStripeProvider(StripeConfig{WebhookSecret: testSecret}, zap.NewNop())
	payload := completedPayload("cs_test_1", "7")

	event, err := p.ParseWebhook(payload, sign(payload, testSecret, time.Now()))
	require.NoError(t, err)

	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, "checkout.session.completed", event.Type)
	require.NotNil(t, event.Checkout)
	assert.Equal(t, "cs_test_1", event.Checkout.SessionID)
	assert.Equal(t, "payment", event.Checkout.Mode)
	assert.Equal(t, "7", event.Checkout.Metadata["user_id"])
	assert.True(t, event.Checkout.Amount.Equal(decimal.RequireFromString("49")))
	assert.Equal(t, "usd", event.Checkout.Currency)
}

func TestParseWebhook_OtherEventType(t *testing.T) {
	p := NewStripeProvider(StripeConfig{WebhookSecret: testSecret}, zap.NewNop())
	payload := []byte(`{"id":"evt_2","object":"event","type":"invoice.paid","data":{"object":{"id":"in_1","object":"invoice"}}}`)

	event, err := p.ParseWebhook(payload, sign(payload, testSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "invoice.paid", event.Type)
	assert.Nil(t, event.Checkout)
}

func TestParseWebhook_Rejects(t *testing.T) {
	payload := completedPayload("cs_test_1", "7")

	tests := []struct {
		name    string
		secret  string
		header  string
		wantErr error
	}{
		{"secret not configured", "", sign(payload, testSecret, time.Now()), apperrors.ErrWebhookSecretMissing},
		{"missing header", testSecret, "", apperrors.ErrMissingSignature},
		{"wrong secret", testSecret, sign(payload, "whsec_other", time.Now()), apperrors.ErrInvalidWebhookSignature},
		{"malformed header", testSecret, "garbage", apperrors.ErrInvalidWebhookSignature},
		{"non-hex digest", testSecret, fmt.Sprintf("t=%d,v1=zz", time.Now().Unix()), apperrors.ErrInvalidWebhookSignature},
		{"stale timestamp", testSecret, sign(payload, testSecret, time.Now().Add(-time.Hour)), apperrors.ErrInvalidWebhookSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewStripeProvider(StripeConfig{WebhookSecret: tt.secret}, zap.NewNop())
			_, err := p.ParseWebhook(payload, tt.header)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseWebhook_TamperedBody(t *testing.T) {
	p := NewStripeProvider(StripeConfig{WebhookSecret: testSecret}, zap.NewNop())
	payload := completedPayload("cs_test_1", "7")
	header := sign(payload, testSecret, time.Now())

	_, err := p.ParseWebhook(completedPayload("cs_test_1", "8"), header)
	assert.ErrorIs(t, err, apperrors.ErrInvalidWebhookSignature)
}

func TestCreateCheckoutSession_Unconfigured(t *testing.T) {
	p := NewStripeProvider(StripeConfig{WebhookSecret: testSecret}, zap.NewNop())

	assert.False(t, p.CheckoutConfigured())
	_, err := p.CreateCheckoutSession(context.Background(), CheckoutRequest{UserID: 1})
	assert.ErrorIs(t, err, apperrors.ErrPaymentProviderUnconfigured)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(4900), MinorUnits(decimal.RequireFromString("49.00")))
	assert.Equal(t, int64(1999), MinorUnits(decimal.RequireFromString("19.99")))
	assert.Equal(t, int64(1), MinorUnits(decimal.RequireFromString("0.005")))
}
