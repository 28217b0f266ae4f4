package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/dmitrijs2005/teamhub/internal/common"
	"github.com/dmitrijs2005/teamhub/internal/logging"
	"github.com/google/uuid"
)

// Hooks connects the transport to the application's session state without
// the transport importing it.
type Hooks struct {
	// AccessToken returns the current access token, or "".
	AccessToken func() string
	// OnSessionRenewed is called after a session-renewing endpoint completes.
	OnSessionRenewed func(ctx context.Context, path string)
	// OnRefreshFailed is called once per failed refresh, after the token
	// store has been cleared. The session is over at that point.
	OnRefreshFailed func(ctx context.Context)
}

type retriedKey struct{}

func withRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

func isRetried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey{}).(bool)
	return v
}

// AuthTransport is an http.RoundTripper that attaches the bearer token to
// every request and recovers from an expired access token by refreshing it
// once and resending the request.
//
// It must be configured with Configure before use; until then every request
// fails with ErrNotConfigured.
type AuthTransport struct {
	base      http.RoundTripper
	refresher *Refresher
	log       logging.Logger
	hooks     atomic.Pointer[Hooks]
}

func NewAuthTransport(base http.RoundTripper, refresher *Refresher, log logging.Logger) *AuthTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if log == nil {
		log = logging.Nop()
	}
	t := &AuthTransport{
		base:      base,
		refresher: refresher,
		log:       log.With("component", "auth-transport"),
	}
	refresher.afterRefresh = func(ctx context.Context) {
		t.renew(ctx, common.RefreshPath)
	}
	refresher.afterFailure = t.endSession
	return t
}

// Configure installs the hooks. It is meant to be called once during
// bootstrap; later calls replace the hooks.
func (t *AuthTransport) Configure(h Hooks) error {
	if h.AccessToken == nil {
		return errors.New("auth transport: AccessToken hook is required")
	}
	t.hooks.Store(&h)
	return nil
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	h := t.hooks.Load()
	if h == nil {
		closeRequestBody(req)
		return nil, ErrNotConfigured
	}

	ctx := req.Context()
	requestID := req.Header.Get(common.RequestIDHeaderName)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	first, sent := prepare(ctx, req, h.AccessToken(), requestID, false)

	resp, err := t.base.RoundTrip(first)
	if err != nil {
		t.renew(ctx, req.URL.Path)
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.renew(ctx, req.URL.Path)
		return resp, nil
	}
	if isRetried(ctx) {
		return resp, nil
	}

	return t.recover(req, resp, sent, requestID, h)
}

// recover handles a 401 on a request that has not been retried yet.
func (t *AuthTransport) recover(req *http.Request, resp *http.Response, sent, requestID string, h *Hooks) (*http.Response, error) {
	ctx := withRetried(req.Context())

	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		t.log.Warn(ctx, "cannot replay request body, not retrying", "path", req.URL.Path, "request_id", requestID)
		return resp, nil
	}

	// A different token than the one sent means a refresh already finished
	// while this request was in flight.
	token := h.AccessToken()
	if token == "" || token == sent {
		var err error
		token, err = t.refresher.Refresh(ctx)
		if err != nil {
			t.log.Info(ctx, "session could not be recovered", "path", req.URL.Path, "request_id", requestID, "error", err)
			return resp, nil
		}
	}

	drainAndClose(resp.Body)

	retry, _ := prepare(ctx, req, token, requestID, true)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}

	resp, err := t.base.RoundTrip(retry)
	if err != nil {
		t.renew(ctx, req.URL.Path)
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.renew(ctx, req.URL.Path)
	}
	return resp, nil
}

func (t *AuthTransport) renew(ctx context.Context, path string) {
	h := t.hooks.Load()
	if h == nil || h.OnSessionRenewed == nil || !common.IsSessionRenewingPath(path) {
		return
	}
	h.OnSessionRenewed(ctx, path)
}

func (t *AuthTransport) endSession(ctx context.Context) {
	h := t.hooks.Load()
	if h == nil || h.OnRefreshFailed == nil {
		return
	}
	h.OnRefreshFailed(ctx)
}

// prepare clones req for sending and returns the token actually attached.
// An existing Authorization header is kept unless override is set.
func prepare(ctx context.Context, req *http.Request, token, requestID string, override bool) (*http.Request, string) {
	out := req.Clone(ctx)
	out.Header.Set(common.RequestIDHeaderName, requestID)

	if token == "" {
		return out, ""
	}
	if !override && out.Header.Get(common.AuthorizationHeaderName) != "" {
		return out, ""
	}
	out.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	return out, token
}

func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4<<10))
	_ = body.Close()
}

func closeRequestBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
