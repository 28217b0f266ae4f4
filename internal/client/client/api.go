package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/teamhub/internal/common"
)

// APIClient implements Client over HTTP. Every error it returns is an
// *APIError.
type APIClient struct {
	baseURL string
	http    *http.Client
}

// NewAPIClient sends requests through rt, normally an *AuthTransport.
func NewAPIClient(baseURL string, rt http.RoundTripper, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		http:    &http.Client{Transport: rt, Timeout: timeout},
	}
}

func (c *APIClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var res LoginResult
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, common.LoginPath, in, &res); err != nil {
		return nil, err
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		return nil, &APIError{Status: http.StatusOK, Message: "login response is missing tokens"}
	}
	return &res, nil
}

func (c *APIClient) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, common.RegisterPath, req, nil)
}

func (c *APIClient) VerifyEmail(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, common.VerifyEmailPath, map[string]string{"token": token}, nil)
}

func (c *APIClient) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, common.ForgotPasswordPath, map[string]string{"email": email}, nil)
}

func (c *APIClient) ResetPassword(ctx context.Context, token, password string) error {
	in := map[string]string{"token": token, "password": password}
	return c.do(ctx, http.MethodPost, common.ResetPasswordPath, in, nil)
}

func (c *APIClient) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, common.CurrentUserPath, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *APIClient) Teams(ctx context.Context) ([]Team, error) {
	var teams []Team
	if err := c.do(ctx, http.MethodGet, common.TeamsPath, nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (c *APIClient) Logout(ctx context.Context, refreshToken string) error {
	return c.do(ctx, http.MethodPost, common.LogoutPath, map[string]string{"refreshToken": refreshToken}, nil)
}

func (c *APIClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &APIError{Message: "encode request: " + err.Error(), Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint(c.baseURL, path), body)
	if err != nil {
		return &APIError{Message: "build request: " + err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return NormalizeError(err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newResponseError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}
