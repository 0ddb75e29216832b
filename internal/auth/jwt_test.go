package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{
	Secret:   "a-test-secret-long-enough",
	Issuer:   "hackverse",
	Audience: "hackverse-api",
	TTL:      time.Hour,
}

func TestSignAndValidate(t *testing.T) {
	signer, err := NewSigner(testConfig)
	require.NoError(t, err)
	validator, err := NewValidator(testConfig)
	require.NoError(t, err)

	token, err := signer.Sign("user-1", "student@example.com")
	require.NoError(t, err)

	t.Run("Should accept a fresh token with or without prefix", func(t *testing.T) {
		for _, raw := range []string{token, "Bearer " + token} {
			claims, err := validator.ValidateToken(raw)
			require.NoError(t, err)
			assert.Equal(t, "user-1", claims.UserID)
			assert.Equal(t, "student@example.com", claims.Email)
		}
	})

	t.Run("Should reject a missing token", func(t *testing.T) {
		_, err := validator.ValidateToken("Bearer ")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("Should reject a token signed with another secret", func(t *testing.T) {
		other, err := NewValidator(Config{Secret: "some-other-secret-value", Issuer: testConfig.Issuer, Audience: testConfig.Audience})
		require.NoError(t, err)

		_, err = other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should reject the wrong audience", func(t *testing.T) {
		cfg := testConfig
		cfg.Audience = "someone-else"
		other, err := NewValidator(cfg)
		require.NoError(t, err)

		_, err = other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestValidateToken_Expired(t *testing.T) {
	signer, err := NewSigner(testConfig)
	require.NoError(t, err)
	signer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	validator, err := NewValidator(testConfig)
	require.NoError(t, err)

	token, err := signer.Sign("user-1", "")
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	validator, err := NewValidator(testConfig)
	require.NoError(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = validator.ValidateToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	_, ok := UserIDFromContext(ctx)
	assert.False(t, ok)

	ctx = WithClaims(ctx, &Claims{UserID: "u"})
	id, ok := UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u", id)
}
