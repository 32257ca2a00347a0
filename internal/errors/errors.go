package errors

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	// ErrDuplicateEmail is returned when registering an email that already exists.
	ErrDuplicateEmail = errors.New("Email already registered")
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("Invalid credentials")
	// ErrMissingToken is returned when a request carries no bearer token.
	ErrMissingToken = errors.New("Missing token")
	// ErrInvalidToken is returned when a token cannot be verified or its user is gone.
	ErrInvalidToken = errors.New("Invalid token")
	// ErrPaymentRequired is returned when an inactive user calls a gated endpoint.
	ErrPaymentRequired = errors.New("Payment required")
	// ErrProjectNotFound is returned for missing projects and for projects owned by someone else.
	ErrProjectNotFound = errors.New("Project not found")
	// ErrNoInputs is returned when calculating a project that has no inputs.
	ErrNoInputs = errors.New("No inputs found for project")
	// ErrPaymentMethodNotFound is returned when the user has no stored payment method.
	ErrPaymentMethodNotFound = errors.New("Payment method not found")
	// ErrPaymentProviderUnconfigured is returned when checkout is requested without provider credentials.
	ErrPaymentProviderUnconfigured = errors.New("Stripe is not configured")
	// ErrWebhookSecretMissing is returned when no webhook secret is configured.
	ErrWebhookSecretMissing = errors.New("Stripe webhook secret missing")
	// ErrMissingSignature is returned when a webhook arrives without a signature header.
	ErrMissingSignature = errors.New("Missing Stripe signature")
	// ErrInvalidWebhookSignature is returned when the signature or payload cannot be verified.
	ErrInvalidWebhookSignature = errors.New("Invalid Stripe payload")
	// ErrVersionConflict is returned when a version could not be allocated after retries.
	ErrVersionConflict = errors.New("Version conflict, please retry")
)

// ValidationError describes a malformed request payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ProviderError carries a message reported by the payment provider.
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Detail: e.Message,
		Code:   e.Code,
	}
}

type mapping struct {
	status int
	code   string
}

var sentinels = map[error]mapping{
	ErrDuplicateEmail:              {http.StatusBadRequest, "EMAIL_ALREADY_REGISTERED"},
	ErrInvalidCredentials:          {http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	ErrMissingToken:                {http.StatusUnauthorized, "MISSING_TOKEN"},
	ErrInvalidToken:                {http.StatusUnauthorized, "INVALID_TOKEN"},
	ErrPaymentRequired:             {http.StatusPaymentRequired, "PAYMENT_REQUIRED"},
	ErrProjectNotFound:             {http.StatusNotFound, "PROJECT_NOT_FOUND"},
	ErrNoInputs:                    {http.StatusBadRequest, "NO_INPUTS"},
	ErrPaymentMethodNotFound:       {http.StatusNotFound, "PAYMENT_METHOD_NOT_FOUND"},
	ErrPaymentProviderUnconfigured: {http.StatusInternalServerError, "PAYMENT_PROVIDER_UNCONFIGURED"},
	ErrWebhookSecretMissing:        {http.StatusBadRequest, "WEBHOOK_SECRET_MISSING"},
	ErrMissingSignature:            {http.StatusBadRequest, "MISSING_SIGNATURE"},
	ErrInvalidWebhookSignature:     {http.StatusBadRequest, "INVALID_SIGNATURE"},
	ErrVersionConflict:             {http.StatusConflict, "VERSION_CONFLICT"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors become a
// generic 500 so internal details never reach the client.
func MapErrorToHTTP(err error) *HTTPError {
	for sentinel, m := range sentinels {
		if errors.Is(err, sentinel) {
			return NewHTTPError(m.status, sentinel.Error(), m.code)
		}
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return NewHTTPError(http.StatusUnprocessableEntity, validationErr.Message, "VALIDATION_ERROR")
	}
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return NewHTTPError(http.StatusBadRequest, providerErr.Message, "PAYMENT_PROVIDER_ERROR")
	}

	return NewHTTPError(http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR")
}

// ToHTTPError converts any error into an echo error carrying an ErrorResponse.
// The original error is kept as Internal for logging.
func ToHTTPError(err error) *echo.HTTPError {
	mapped := MapErrorToHTTP(err)
	he := echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	he.Internal = err
	return he
}
