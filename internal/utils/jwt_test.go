package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "42", "3", "Ana", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "3", claims.PlanID)
	assert.Equal(t, "Ana", claims.Name)
	assert.NotEmpty(t, claims.ID)
}

func TestParseToken_Rejects(t *testing.T) {
	token, err := GenerateToken("secret", "42", "1", "", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other", token)
	assert.Error(t, err)

	expired, err := GenerateToken("secret", "42", "1", "", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("secret", expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = ParseToken("secret", "not-a-token")
	assert.Error(t, err)
}

func TestGenerateToken_RequiresIdentity(t *testing.T) {
	_, err := GenerateToken("secret", "", "1", "", time.Hour)
	assert.Error(t, err)
	_, err = GenerateToken("secret", "42", "", "", time.Hour)
	assert.Error(t, err)
}
