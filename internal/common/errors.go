package common

import "errors"

// Token lifecycle errors.
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrNoRefreshToken = errors.New("no refresh token")
	ErrRefreshFailed  = errors.New("token refresh failed")
)
