// Package common contains shared constants and sentinel errors used across
// teamhub client components.
package common

// Header names set on outbound API requests.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerPrefix            = "Bearer "
)

// Durable storage keys.
const (
	RefreshTokenKey     = "refresh_token"
	SessionExpiresAtKey = "session_expires_at"
)

// REST API paths.
const (
	LoginPath          = "/auth/login"
	RegisterPath       = "/auth/register"
	RefreshPath        = "/auth/refresh"
	CurrentUserPath    = "/auth/me"
	LogoutPath         = "/auth/logout"
	VerifyEmailPath    = "/auth/verify-email"
	ForgotPasswordPath = "/auth/forgot-password"
	ResetPasswordPath  = "/auth/reset-password"
	TeamsPath          = "/teams"
)

// SessionRenewingPaths lists endpoints whose completion extends the session
// timer. Matching is by substring of the request URL path.
var SessionRenewingPaths = []string{LoginPath, RefreshPath, CurrentUserPath}
