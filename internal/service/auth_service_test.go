package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
)

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims *models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() *models.JWTClaims {
	now := time.Now()
	return &models.JWTClaims{
		UserID: "student-1",
		Role:   models.RoleStudent,
		Email:  "ana@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "alumni-platform",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestValidateToken(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "alumni-platform"})

	claims, err := svc.ValidateToken(signToken(t, jwt.SigningMethodHS256, "secret", validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "student-1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "alumni-platform"})

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	foreign := validClaims()
	foreign.Issuer = "someone-else"

	anonymous := validClaims()
	anonymous.UserID = ""

	cases := map[string]string{
		"wrong secret": signToken(t, jwt.SigningMethodHS256, "other", validClaims()),
		"expired":      signToken(t, jwt.SigningMethodHS256, "secret", expired),
		"wrong issuer": signToken(t, jwt.SigningMethodHS256, "secret", foreign),
		"wrong method": signToken(t, jwt.SigningMethodHS512, "secret", validClaims()),
		"missing id":   signToken(t, jwt.SigningMethodHS256, "secret", anonymous),
		"not a token":  "garbage",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
		})
	}
}
