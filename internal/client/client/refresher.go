package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/teamhub/internal/client/tokens"
	"github.com/dmitrijs2005/teamhub/internal/common"
	"github.com/dmitrijs2005/teamhub/internal/logging"
)

var errMalformedRefresh = errors.New("refresh response is missing tokens")

// TokenPair is what the API issues on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type refreshResult struct {
	token string
	err   error
}

// Refresher performs token refreshes so that concurrent callers share a
// single in-flight call. The first caller does the work; callers arriving
// while it runs are queued and receive the same outcome in arrival order.
type Refresher struct {
	baseURL string
	http    *http.Client
	tokens  *tokens.Store
	timeout time.Duration
	log     logging.Logger

	// afterRefresh and afterFailure are called by the caller that performed
	// the refresh, once per attempt, after the waiters have been released.
	afterRefresh func(ctx context.Context)
	afterFailure func(ctx context.Context)

	mu         sync.Mutex
	inProgress bool
	waiters    []chan refreshResult
}

// NewRefresher sends refresh calls through base directly, bypassing any
// interception.
func NewRefresher(baseURL string, base http.RoundTripper, store *tokens.Store, timeout time.Duration, log logging.Logger) *Refresher {
	if base == nil {
		base = http.DefaultTransport
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Refresher{
		baseURL: baseURL,
		http:    &http.Client{Transport: base},
		tokens:  store,
		timeout: timeout,
		log:     log.With("component", "refresher"),
	}
}

// Refresh returns a new access token. On failure the token store has been
// cleared, afterFailure has run, and the error wraps common.ErrRefreshFailed.
//
// A refresh, once started, runs to completion even if ctx is cancelled; a
// cancelled waiter only stops waiting for it.
func (r *Refresher) Refresh(ctx context.Context) (string, error) {
	r.mu.Lock()
	if r.inProgress {
		ch := make(chan refreshResult, 1)
		r.waiters = append(r.waiters, ch)
		r.mu.Unlock()

		select {
		case res := <-ch:
			return res.token, res.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	r.inProgress = true
	r.mu.Unlock()

	token, err := r.refresh(ctx)

	r.mu.Lock()
	waiters := r.waiters
	r.waiters = nil
	r.inProgress = false
	r.mu.Unlock()

	for _, ch := range waiters {
		ch <- refreshResult{token: token, err: err}
	}

	hookCtx := context.WithoutCancel(ctx)
	if err != nil {
		r.log.Warn(ctx, "token refresh failed", "error", err, "waiters", len(waiters))
		if r.afterFailure != nil {
			r.afterFailure(hookCtx)
		}
		return "", err
	}

	r.log.Info(ctx, "token refreshed", "waiters", len(waiters))
	if r.afterRefresh != nil {
		r.afterRefresh(hookCtx)
	}
	return token, nil
}

func (r *Refresher) refresh(ctx context.Context) (string, error) {
	ctx = context.WithoutCancel(ctx)
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	refreshToken, err := r.tokens.RefreshToken(ctx)
	if err != nil {
		return "", r.fail(ctx, err)
	}
	if refreshToken == "" {
		return "", r.fail(ctx, common.ErrNoRefreshToken)
	}

	pair, err := r.call(ctx, refreshToken)
	if err != nil {
		return "", r.fail(ctx, err)
	}

	if err := r.tokens.SetTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return "", r.fail(ctx, err)
	}
	return pair.AccessToken, nil
}

func (r *Refresher) call(ctx context.Context, refreshToken string) (TokenPair, error) {
	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return TokenPair{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint(r.baseURL, common.RefreshPath), bytes.NewReader(body))
	if err != nil {
		return TokenPair{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return TokenPair{}, NormalizeError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return TokenPair{}, newResponseError(resp)
	}

	var pair TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return TokenPair{}, fmt.Errorf("decode refresh response: %w", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return TokenPair{}, errMalformedRefresh
	}
	return pair, nil
}

func (r *Refresher) fail(ctx context.Context, cause error) error {
	if err := r.tokens.Clear(ctx); err != nil {
		r.log.Error(ctx, "failed to clear tokens after refresh failure", "error", err)
	}
	return fmt.Errorf("%w: %w", common.ErrRefreshFailed, cause)
}

func endpoint(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + path
}
