package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"duplicate email", ErrDuplicateEmail, http.StatusBadRequest, "Email already registered"},
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"missing token", ErrMissingToken, http.StatusUnauthorized, "Missing token"},
		{"invalid token", ErrInvalidToken, http.StatusUnauthorized, "Invalid token"},
		{"payment required", ErrPaymentRequired, http.StatusPaymentRequired, "Payment required"},
		{"wrapped project not found", fmt.Errorf("save inputs: %w", ErrProjectNotFound), http.StatusNotFound, "Project not found"},
		{"no inputs", ErrNoInputs, http.StatusBadRequest, "No inputs found for project"},
		{"provider unconfigured", ErrPaymentProviderUnconfigured, http.StatusInternalServerError, "Stripe is not configured"},
		{"bad signature", ErrInvalidWebhookSignature, http.StatusBadRequest, "Invalid Stripe payload"},
		{"version conflict", ErrVersionConflict, http.StatusConflict, "Version conflict, please retry"},
		{"validation", NewValidationError("email", "email must be a valid email address"), http.StatusUnprocessableEntity, "email must be a valid email address"},
		{"provider", &ProviderError{Message: "card declined"}, http.StatusBadRequest, "card declined"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, tt.wantDetail, got.Message)
		})
	}
}

func TestToHTTPError_KeepsInternal(t *testing.T) {
	cause := fmt.Errorf("lookup: %w", ErrProjectNotFound)

	he := ToHTTPError(cause)

	assert.Equal(t, http.StatusNotFound, he.Code)
	assert.Equal(t, ErrorResponse{Detail: "Project not found", Code: "PROJECT_NOT_FOUND"}, he.Message)
	assert.ErrorIs(t, he.Internal, ErrProjectNotFound)
}
