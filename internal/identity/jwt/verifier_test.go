package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"email": "user@example.com",
		"iss":   "hatbajar",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier(Config{SecretKey: testSecret, Issuer: "hatbajar"})
	require.NoError(t, err)
	return v
}

func TestNewVerifier_RequiresSecret(t *testing.T) {
	_, err := NewVerifier(Config{Issuer: "hatbajar"})

	assert.Error(t, err)
}

func TestVerify_ValidToken(t *testing.T) {
	// Arrange
	v := newTestVerifier(t)
	token := signToken(t, testSecret, jwt.SigningMethodHS256, baseClaims())

	// Act
	identity, err := v.Verify(context.Background(), token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", identity.Subject)
	assert.True(t, identity.Verified)
}

func TestVerify_FallsBackToSub(t *testing.T) {
	// Arrange
	v := newTestVerifier(t)
	claims := baseClaims()
	delete(claims, "email")
	claims["sub"] = "sub@example.com"
	token := signToken(t, testSecret, jwt.SigningMethodHS256, claims)

	// Act
	identity, err := v.Verify(context.Background(), token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "sub@example.com", identity.Subject)
}

func TestVerify_NoSubject(t *testing.T) {
	// Arrange
	v := newTestVerifier(t)
	claims := baseClaims()
	delete(claims, "email")
	token := signToken(t, testSecret, jwt.SigningMethodHS256, claims)

	// Act
	_, err := v.Verify(context.Background(), token)

	// Assert
	assert.Error(t, err)
}

func TestVerify_WrongSignature(t *testing.T) {
	// Arrange
	v := newTestVerifier(t)
	token := signToken(t, "other-secret", jwt.SigningMethodHS256, baseClaims())

	// Act
	_, err := v.Verify(context.Background(), token)

	// Assert
	assert.Error(t, err)
}

func TestVerify_WrongIssuer(t *testing.T) {
	// Arrange
	v := newTestVerifier(t)
	claims := baseClaims()
	claims["iss"] = "someone-else"
	token := signToken(t, testSecret, jwt.SigningMethodHS256, claims)

	// Act
	_, err := v.Verify(context.Background(), token)

	// Assert
	assert.Error(t, err)
}

func TestVerify_ExpiredToken(t *testing.T) {
	// Arrange
	v := newTestVerifier(t)
	claims := baseClaims()
	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	token := signToken(t, testSecret, jwt.SigningMethodHS256, claims)

	// Act
	_, err := v.Verify(context.Background(), token)

	// Assert
	assert.Error(t, err)
}

func TestVerify_MissingExpiry(t *testing.T) {
	// Arrange
	v := newTestVerifier(t)
	claims := baseClaims()
	delete(claims, "exp")
	token := signToken(t, testSecret, jwt.SigningMethodHS256, claims)

	// Act
	_, err := v.Verify(context.Background(), token)

	// Assert
	assert.Error(t, err)
}

func TestVerify_Garbage(t *testing.T) {
	v := newTestVerifier(t)

	_, err := v.Verify(context.Background(), "not.a.token")

	assert.Error(t, err)
}
