package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
)

func TestManager_GenerateAndParse(t *testing.T) {
	m := NewManager("secret", time.Hour, 24*time.Hour)

	pair, err := m.GenerateToken("u-1", "reader@example.com", "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := m.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.InDelta(t, time.Hour.Seconds(), claims.RemainingTTL().Seconds(), 5)

	_, err = m.ParseAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken, "Refresh Token不能用于访问接口")
}

func TestManager_Expired(t *testing.T) {
	m := NewManager("secret", -time.Minute, time.Hour)
	pair, err := m.GenerateToken("u-1", "", "CUSTOMER")
	require.NoError(t, err)

	_, err = m.ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestManager_WrongSecret(t *testing.T) {
	pair, err := NewManager("a", time.Hour, time.Hour).GenerateToken("u-1", "", "CUSTOMER")
	require.NoError(t, err)

	_, err = NewManager("b", time.Hour, time.Hour).ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestManager_RefreshAccessToken(t *testing.T) {
	m := NewManager("secret", time.Hour, 24*time.Hour)
	pair, err := m.GenerateToken("u-1", "", "CUSTOMER")
	require.NoError(t, err)

	access, err := m.RefreshAccessToken(pair.RefreshToken)
	require.NoError(t, err)
	claims, err := m.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)

	_, err = m.RefreshAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
