package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastParams = Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(fastParams)

	encoded, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))
	assert.NotContains(t, encoded, "secret123")

	ok, err := h.Verify("secret123", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong", encoded)
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, encoded, other, "salt must be random")
}

func TestPasswordHasher_VerifyUsesEncodedParams(t *testing.T) {
	encoded, err := NewPasswordHasher(fastParams).Hash("pw")
	require.NoError(t, err)

	ok, err := NewPasswordHasher(DefaultArgon2Params).Verify("pw", encoded)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPasswordHasher_Malformed(t *testing.T) {
	h := NewPasswordHasher(fastParams)
	for _, encoded := range []string{
		"",
		"plaintext",
		"$2a$10$abcdefghijklmnopqrstuv",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$!!$aGFzaA",
	} {
		_, err := h.Verify("pw", encoded)
		assert.ErrorIs(t, err, errMalformedHash, encoded)
	}
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc, err := NewJWTService("test-secret", "HS256", 30*time.Minute)
	require.NoError(t, err)

	token, tokenID, err := svc.GenerateAccessToken(42, "a@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, tokenID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, tokenID, claims.ID)
	assert.InDelta(t, (30 * time.Minute).Seconds(), claims.TTL(time.Now()).Seconds(), 5)
}

func TestJWTService_Rejects(t *testing.T) {
	svc, err := NewJWTService("test-secret", "HS256", time.Minute)
	require.NoError(t, err)
	otherKey, err := NewJWTService("other-secret", "HS256", time.Minute)
	require.NoError(t, err)
	otherAlg, err := NewJWTService("test-secret", "HS512", time.Minute)
	require.NoError(t, err)
	expired, err := NewJWTService("test-secret", "HS256", -time.Minute)
	require.NoError(t, err)

	forged, _, _ := otherKey.GenerateAccessToken(1, "")
	wrongAlg, _, _ := otherAlg.GenerateAccessToken(1, "")
	stale, _, _ := expired.GenerateAccessToken(1, "")
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":    "not-a-jwt",
		"wrong key":  forged,
		"wrong alg":  wrongAlg,
		"expired":    stale,
		"no subject": noSubject,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.Error(t, err)
		})
	}
}

func TestNewJWTService_RejectsNonHMAC(t *testing.T) {
	_, err := NewJWTService("s", "RS256", time.Minute)
	assert.Error(t, err)
	_, err = NewJWTService("s", "none", time.Minute)
	assert.Error(t, err)
}

func TestTokenStore_DisabledCache(t *testing.T) {
	store := NewTokenStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "jti", time.Minute))
	revoked, err := store.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}
