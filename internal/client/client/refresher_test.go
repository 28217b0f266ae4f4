package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/teamhub/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (r *Refresher) pending() (bool, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inProgress, len(r.waiters)
}

func requireCleared(t *testing.T, h *harness) {
	t.Helper()
	assert.Empty(t, h.store.AccessToken())
	rt, err := h.store.RefreshToken(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rt)
}

func TestRefresher_Success(t *testing.T) {
	h := newHarness(t)
	old, _ := h.login(t)

	token, err := h.refresher.Refresh(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, old.AccessToken, token)
	assert.Equal(t, token, h.store.AccessToken())
	assert.Equal(t, []string{common.RefreshPath}, h.renewed.all())

	inProgress, waiters := h.refresher.pending()
	assert.False(t, inProgress)
	assert.Zero(t, waiters)
}

func TestRefresher_Failures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, h *harness)
		calls   int
		wantErr error
	}{
		{
			name:    "no refresh token",
			setup:   func(t *testing.T, h *harness) { h.store.SetAccessToken("orphan") },
			calls:   0,
			wantErr: common.ErrNoRefreshToken,
		},
		{
			name: "rejected",
			setup: func(t *testing.T, h *harness) {
				h.login(t)
				h.api.FailRefresh(http.StatusUnauthorized, `{"message":"refresh token revoked"}`)
			},
			calls:   1,
			wantErr: ErrUnauthorized,
		},
		{
			name: "missing tokens",
			setup: func(t *testing.T, h *harness) {
				h.login(t)
				h.api.FailRefresh(http.StatusOK, `{"accessToken":"only-access"}`)
			},
			calls:   1,
			wantErr: errMalformedRefresh,
		},
		{
			name: "not json",
			setup: func(t *testing.T, h *harness) {
				h.login(t)
				h.api.FailRefresh(http.StatusOK, `<html>`)
			},
			calls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(t, h)

			token, err := h.refresher.Refresh(context.Background())
			require.Error(t, err)
			assert.Empty(t, token)
			assert.ErrorIs(t, err, common.ErrRefreshFailed)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.calls, h.api.RefreshCalls())
			assert.Empty(t, h.renewed.all())
			requireCleared(t, h)
		})
	}
}

func TestRefresher_NetworkFailureClearsTokens(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.api.Close()

	_, err := h.refresher.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRefreshFailed)
	assert.ErrorIs(t, err, ErrUnavailable)
	requireCleared(t, h)
}

func TestRefresher_RunsToCompletionWhenCallerCancelled(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	token, err := h.refresher.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, token, h.store.AccessToken())
}

func TestRefresher_WaitersShareOutcome(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.api.SetRefreshDelay(100 * time.Millisecond)

	type result struct {
		token string
		err   error
	}
	leader := make(chan result, 1)
	go func() {
		token, err := h.refresher.Refresh(context.Background())
		leader <- result{token, err}
	}()
	require.Eventually(t, func() bool {
		inProgress, _ := h.refresher.pending()
		return inProgress
	}, time.Second, time.Millisecond)

	const n = 5
	waiters := make(chan result, n)
	for i := 0; i < n; i++ {
		go func() {
			token, err := h.refresher.Refresh(context.Background())
			waiters <- result{token, err}
		}()
	}
	require.Eventually(t, func() bool {
		_, queued := h.refresher.pending()
		return queued == n
	}, time.Second, time.Millisecond)

	got := <-leader
	require.NoError(t, got.err)
	for i := 0; i < n; i++ {
		w := <-waiters
		require.NoError(t, w.err)
		assert.Equal(t, got.token, w.token)
	}
	assert.Equal(t, 1, h.api.RefreshCalls())
	assert.Equal(t, []string{common.RefreshPath}, h.renewed.all(), "only the leader renews the session")
}

func TestRefresher_CancelledWaiterStopsWaiting(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.api.SetRefreshDelay(200 * time.Millisecond)

	leader := make(chan error, 1)
	go func() {
		_, err := h.refresher.Refresh(context.Background())
		leader <- err
	}()
	require.Eventually(t, func() bool {
		inProgress, _ := h.refresher.pending()
		return inProgress
	}, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := h.refresher.Refresh(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	require.NoError(t, <-leader)
	assert.NotEmpty(t, h.store.AccessToken())
}
