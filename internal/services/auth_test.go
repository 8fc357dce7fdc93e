package services

import (
	"context"
	"testing"
	"time"
	"turnover/internal/models"
	"turnover/internal/types"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RoundTrip(t *testing.T) {
	auth := NewAuthService("test-secret")
	userID := uuid.New()

	token, err := auth.IssueToken(userID, models.RoleCleaner)
	require.NoError(t, err)

	info, err := auth.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, info.Valid)
	assert.Equal(t, userID, info.UserID)
	assert.Equal(t, string(models.RoleCleaner), info.Role)
}

func TestAuthService_Rejects(t *testing.T) {
	auth := NewAuthService("test-secret")
	userID := uuid.New()

	expired := NewAuthService("test-secret")
	expired.now = func() time.Time { return time.Now().Add(-24 * time.Hour) }
	expiredToken, err := expired.IssueToken(userID, models.RoleAdmin)
	require.NoError(t, err)

	foreignToken, err := NewAuthService("other-secret").IssueToken(userID, models.RoleAdmin)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:  tokenIssuer,
		Subject: userID.String(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	testCases := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "expired", token: expiredToken},
		{name: "wrong secret", token: foreignToken},
		{name: "unsigned", token: noneToken},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info, err := auth.ValidateToken(context.Background(), tc.token)
			assert.ErrorIs(t, err, types.ErrForbidden)
			assert.False(t, info.Valid)
		})
	}
}

func TestAuthService_IssueRejectsUnknownRole(t *testing.T) {
	_, err := NewAuthService("test-secret").IssueToken(uuid.New(), models.Role("owner"))
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}
