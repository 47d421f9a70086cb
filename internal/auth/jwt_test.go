package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"teampulse.io/daily-report/internal/config"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	token, err := GenerateJWT("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestValidateJWTRejectsBadTokens(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	_, err := ValidateJWT("not.a.token")
	assert.Error(t, err)

	token, err := GenerateJWT("user-123")
	require.NoError(t, err)

	config.AppConfig.JWTSecret = "different-secret"
	_, err = ValidateJWT(token)
	assert.Error(t, err, "token signed with another secret must not validate")
}
