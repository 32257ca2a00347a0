package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"solarsizing/internal/auth"
	"solarsizing/internal/cache"
	apperrors "solarsizing/internal/errors"
	"solarsizing/internal/model"
	"solarsizing/internal/repository"
)

const activeUserCacheTTL = 5 * time.Minute

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// TokenIssuer issues and validates bearer tokens.
type TokenIssuer interface {
	GenerateAccessToken(userID uint, email string) (token string, tokenID string, err error)
	ValidateToken(token string) (*auth.Claims, error)
}

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Payment  PaymentInfo
}

// LoginResult is returned on successful login.
type LoginResult struct {
	AccessToken string
	User        *model.User
}

// AuthService handles registration, login and token resolution.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ResolveToken(ctx context.Context, token string) (*model.User, error)
	VerifyToken(ctx context.Context, token string) (*auth.Claims, error)
	UserFromClaims(ctx context.Context, claims *auth.Claims) (*model.User, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

type authService struct {
	userRepo   repository.UserRepository
	hasher     PasswordHasher
	tokens     TokenIssuer
	tokenStore auth.TokenStoreInterface
	cache      *cache.Client
	validator  *PaymentDetailsValidator
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	tokenStore auth.TokenStoreInterface,
	cache *cache.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		hasher:     hasher,
		tokens:     tokens,
		tokenStore: tokenStore,
		cache:      cache,
		validator:  NewPaymentDetailsValidator(),
		logger:     logger.Named("auth"),
		now:        time.Now,
	}
}

// Register creates an inactive user together with its payment method.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	method, err := s.validator.Validate(in.Payment)
	if err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrDuplicateEmail
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		IsActive:     false,
		CreatedAt:    now,
	}
	method.CreatedAt = now

	if err := s.userRepo.CreateWithPaymentMethod(ctx, user, method); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("payment_method", method.MethodType))
	return user, nil
}

// Login verifies credentials and issues an access token. Unknown emails and
// wrong passwords produce the same error.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, _, err := s.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	return &LoginResult{AccessToken: token, User: user}, nil
}

// ResolveToken maps a bearer token to its user.
func (s *authService) ResolveToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperrors.ErrMissingToken
	}
	claims, err := s.VerifyToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.UserFromClaims(ctx, claims)
}

// VerifyToken checks signature, expiry and revocation.
func (s *authService) VerifyToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	revoked, err := s.tokenStore.IsRevoked(ctx, claims.ID)
	if err != nil || revoked {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// UserFromClaims loads the token's user. Only active users are cached, since
// activation never reverts.
func (s *authService) UserFromClaims(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	key := activeUserKey(userID)
	var cached model.User
	if s.cache.GetJSON(ctx, key, &cached) && cached.ID == userID {
		return &cached, nil
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user.IsActive {
		_ = s.cache.SetJSON(ctx, key, user, activeUserCacheTTL)
	}
	return user, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.tokenStore.Revoke(ctx, claims.ID, claims.TTL(s.now())); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func activeUserKey(id uint) string {
	return "user:active:" + strconv.FormatUint(uint64(id), 10)
}
