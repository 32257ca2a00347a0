package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "solarsizing/internal/errors"
	"solarsizing/internal/middleware"
	"solarsizing/internal/model"
	"solarsizing/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// PaymentDetailsRequest is the payment method supplied at registration.
type PaymentDetailsRequest struct {
	Method      string `json:"method" validate:"required,oneof=visa mastercard mobile_money"`
	CardNumber  string `json:"card_number,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name     string                `json:"name" validate:"required,max=200"`
	Email    string                `json:"email" validate:"required,email"`
	Password string                `json:"password" validate:"required"`
	Payment  PaymentDetailsRequest `json:"payment"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// LoginResponse represents an authentication response.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	IsActive    bool   `json:"is_active"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, IsActive: u.IsActive}
}

// Register godoc
// @Summary Register a new user
// @Description New accounts are inactive until the activation fee is paid.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Payment: service.PaymentInfo{
			Method:      req.Payment.Method,
			CardNumber:  req.Payment.CardNumber,
			PhoneNumber: req.Payment.PhoneNumber,
		},
	})
	if err != nil {
		return apperrors.ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, newUserResponse(user))
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return apperrors.ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, LoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
		IsActive:    result.User.IsActive,
	})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, newUserResponse(middleware.CurrentUser(c)))
}

// Logout godoc
// @Summary Revoke the presented access token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), middleware.Claims(c)); err != nil {
		return apperrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"detail": "Logged out"})
}
