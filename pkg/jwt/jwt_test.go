package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateToken("u1", "ann@example.com", "user", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ann@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
}

func TestValidateToken_Rejects(t *testing.T) {
	token, err := GenerateToken("u1", "ann@example.com", "user", "secret", time.Hour)
	require.NoError(t, err)
	_, err = ValidateToken(token, "other")
	assert.Error(t, err)

	expired, err := GenerateToken("u1", "ann@example.com", "user", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(expired, "secret")
	assert.Error(t, err)

	_, err = ValidateToken("not-a-token", "secret")
	assert.Error(t, err)
}
