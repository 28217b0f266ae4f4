package tokens

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/teamhub/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the client can read from an access token without the
// server's key. It is informational only and never used for trust decisions.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// InspectAccessToken decodes a JWT access token without verifying its
// signature. Opaque (non-JWT) tokens yield common.ErrInvalidToken.
func InspectAccessToken(token string) (Claims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	c := Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}
