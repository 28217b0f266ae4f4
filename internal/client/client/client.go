package client

import (
	"context"
)

// Client is the REST API contract used by the client services.
type Client interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, req RegisterRequest) error
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	CurrentUser(ctx context.Context) (*User, error)
	Teams(ctx context.Context) ([]Team, error)
	Logout(ctx context.Context, refreshToken string) error
}

type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	EmailVerified bool   `json:"emailVerified"`
	Role          string `json:"role,omitempty"`
}

type Team struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Game    string `json:"game"`
	Members int    `json:"members"`
}

type LoginResult struct {
	TokenPair
	User User `json:"user"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}
