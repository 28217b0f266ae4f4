package tokens

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/teamhub/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectAccessToken(t *testing.T) {
	exp := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "player-42",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	c, err := InspectAccessToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "player-42", c.Subject)
	assert.True(t, exp.Equal(c.ExpiresAt))
}

func TestInspectAccessToken_Opaque(t *testing.T) {
	_, err := InspectAccessToken("not-a-jwt")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
