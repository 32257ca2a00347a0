package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"solarsizing/internal/auth"
	apperrors "solarsizing/internal/errors"
	"solarsizing/internal/model"
)

var fastArgon2 = auth.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) CreateWithPaymentMethod(ctx context.Context, user *model.User, method *model.PaymentMethod) error {
	args := m.Called(ctx, user, method)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Activate(ctx context.Context, id uint, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func newTestAuthService(t *testing.T, repo *MockUserRepository, store *MockTokenStore) (AuthService, *auth.JWTService, *auth.PasswordHasher) {
	t.Helper()
	jwtService, err := auth.NewJWTService("test-secret", "HS256", time.Hour)
	require.NoError(t, err)
	hasher := auth.NewPasswordHasher(fastArgon2)
	return NewAuthService(repo, hasher, jwtService, store, nil, zap.NewNop()), jwtService, hasher
}

func visaInput(email string) RegisterInput {
	return RegisterInput{
		Name:     "Test User",
		Email:    email,
		Password: "password123",
		Payment:  PaymentInfo{Method: "visa", CardNumber: "4242 4242 4242 4242"},
	}
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "successful registration",
			input: visaInput("test@example.com"),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("CreateWithPaymentMethod", mock.Anything, mock.AnythingOfType("*model.User"), mock.AnythingOfType("*model.PaymentMethod")).
					Run(func(args mock.Arguments) {
						args.Get(1).(*model.User).ID = 7
					}).
					Return(nil)
			},
		},
		{
			name:  "email already registered",
			input: visaInput("existing@example.com"),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{ID: 1, Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrDuplicateEmail,
		},
		{
			name:  "concurrent registration loses the insert",
			input: visaInput("race@example.com"),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("CreateWithPaymentMethod", mock.Anything, mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			service, _, hasher := newTestAuthService(t, mockRepo, new(MockTokenStore))

			user, err := service.Register(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint(7), user.ID)
				assert.Equal(t, tt.input.Email, user.Email)
				assert.Equal(t, model.RoleUser, user.Role)
				assert.False(t, user.IsActive)

				ok, err := hasher.Verify(tt.input.Password, user.PasswordHash)
				require.NoError(t, err)
				assert.True(t, ok)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register_StoresMaskedCard(t *testing.T) {
	mockRepo := new(MockUserRepository)
	var stored *model.PaymentMethod
	mockRepo.On("FindByEmail", mock.Anything, "a@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("CreateWithPaymentMethod", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(2).(*model.PaymentMethod) }).
		Return(nil)
	service, _, _ := newTestAuthService(t, mockRepo, new(MockTokenStore))

	_, err := service.Register(context.Background(), visaInput("a@example.com"))
	require.NoError(t, err)

	require.NotNil(t, stored)
	assert.Equal(t, model.MethodTypeVisa, stored.MethodType)
	assert.Equal(t, "4242", stored.DetailsJSON["last4"])
	assert.NotContains(t, stored.DetailsJSON, "card_number")
}

func TestAuthService_Register_InvalidPaymentSkipsRepository(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service, _, _ := newTestAuthService(t, mockRepo, new(MockTokenStore))

	in := visaInput("a@example.com")
	in.Payment = PaymentInfo{Method: "visa", CardNumber: "4242424242424241"}

	_, err := service.Register(context.Background(), in)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "payment.card_number", verr.Field)
	mockRepo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *auth.PasswordHasher)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository, h *auth.PasswordHasher) {
				hash, _ := h.Hash("password123")
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{ID: 3, Email: "test@example.com", PasswordHash: hash}, nil)
			},
		},
		{
			name:     "unknown email",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository, _ *auth.PasswordHasher) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "wrong",
			setupMock: func(m *MockUserRepository, h *auth.PasswordHasher) {
				hash, _ := h.Hash("password123")
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{ID: 3, Email: "test@example.com", PasswordHash: hash}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			service, jwtService, hasher := newTestAuthService(t, mockRepo, new(MockTokenStore))
			tt.setupMock(mockRepo, hasher)

			result, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				claims, err := jwtService.ValidateToken(result.AccessToken)
				require.NoError(t, err)
				assert.Equal(t, "3", claims.Subject)
				assert.Equal(t, tt.email, result.User.Email)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_ResolveToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockStore := new(MockTokenStore)
	service, jwtService, _ := newTestAuthService(t, mockRepo, mockStore)

	valid, validID, err := jwtService.GenerateAccessToken(5, "a@example.com")
	require.NoError(t, err)
	revoked, revokedID, err := jwtService.GenerateAccessToken(5, "a@example.com")
	require.NoError(t, err)
	orphan, orphanID, err := jwtService.GenerateAccessToken(99, "gone@example.com")
	require.NoError(t, err)

	mockStore.On("IsRevoked", mock.Anything, validID).Return(false, nil)
	mockStore.On("IsRevoked", mock.Anything, revokedID).Return(true, nil)
	mockStore.On("IsRevoked", mock.Anything, orphanID).Return(false, nil)
	mockRepo.On("FindByID", mock.Anything, uint(5)).Return(&model.User{ID: 5, Email: "a@example.com"}, nil)
	mockRepo.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"valid token", valid, nil},
		{"missing token", "", apperrors.ErrMissingToken},
		{"garbage token", "not-a-jwt", apperrors.ErrInvalidToken},
		{"revoked token", revoked, apperrors.ErrInvalidToken},
		{"user deleted", orphan, apperrors.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := service.ResolveToken(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(5), user.ID)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	mockStore := new(MockTokenStore)
	service, jwtService, _ := newTestAuthService(t, new(MockUserRepository), mockStore)

	token, tokenID, err := jwtService.GenerateAccessToken(5, "a@example.com")
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)

	mockStore.On("Revoke", mock.Anything, tokenID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 0 && ttl <= time.Hour
	})).Return(nil)

	require.NoError(t, service.Logout(context.Background(), claims))
	mockStore.AssertExpectations(t)
}
