package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "solarsizing/internal/errors"
	"solarsizing/internal/middleware"
	"solarsizing/internal/model"
	"solarsizing/internal/service"
)

const stripeSignatureHeader = "Stripe-Signature"

// PaymentHandler handles payment endpoints.
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CheckoutRequest selects the payment provider.
type CheckoutRequest struct {
	Provider string `json:"provider" validate:"omitempty,oneof=stripe mobile"`
}

// CheckoutResponse is a hosted checkout session.
type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

// MobileCheckoutResponse is returned for mobile money checkouts.
type MobileCheckoutResponse struct {
	Provider string `json:"provider"`
	Detail   string `json:"detail"`
}

// PaymentMethodResponse is a stored payment method.
type PaymentMethodResponse struct {
	MethodType  string                 `json:"method_type"`
	DetailsJSON map[string]interface{} `json:"details_json"`
}

// GetPaymentMethod godoc
// @Summary Current user's payment method
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} PaymentMethodResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /payments/me [get]
func (h *PaymentHandler) GetPaymentMethod(c echo.Context) error {
	method, err := h.paymentService.GetPaymentMethod(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return apperrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, PaymentMethodResponse{
		MethodType:  method.MethodType,
		DetailsJSON: method.DetailsJSON,
	})
}

// Checkout godoc
// @Summary Start the activation payment
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CheckoutRequest true "Provider selection"
// @Success 200 {object} CheckoutResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /payments/checkout [post]
func (h *PaymentHandler) Checkout(c echo.Context) error {
	var req CheckoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Provider == "" {
		req.Provider = model.ProviderStripe
	}

	result, err := h.paymentService.StartCheckout(c.Request().Context(), middleware.CurrentUser(c), req.Provider)
	if err != nil {
		return apperrors.ToHTTPError(err)
	}
	if result.Detail != "" {
		return c.JSON(http.StatusOK, MobileCheckoutResponse{Provider: result.Provider, Detail: result.Detail})
	}
	return c.JSON(http.StatusOK, CheckoutResponse{CheckoutURL: result.CheckoutURL, SessionID: result.SessionID})
}

// StripeWebhook godoc
// @Summary Stripe webhook receiver
// @Description The raw body is verified against the Stripe-Signature header.
// @Tags payments
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Stripe signature"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} errors.ErrorResponse
// @Failure 413 {object} errors.ErrorResponse
// @Router /payments/webhook/stripe [post]
func (h *PaymentHandler) StripeWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return apperrors.ToHTTPError(apperrors.ErrInvalidWebhookSignature)
	}

	signature := c.Request().Header.Get(stripeSignatureHeader)
	if err := h.paymentService.HandleWebhook(c.Request().Context(), payload, signature); err != nil {
		return apperrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
