package client

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/teamhub/internal/client/apitest"
	"github.com/dmitrijs2005/teamhub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/teamhub/internal/client/tokens"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// pathRecorder collects the paths passed to OnSessionRenewed.
type pathRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (p *pathRecorder) record(_ context.Context, path string) {
	p.mu.Lock()
	p.paths = append(p.paths, path)
	p.mu.Unlock()
}

func (p *pathRecorder) all() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.paths...)
}

type harness struct {
	api       *apitest.Server
	repo      *metadata.MemoryRepository
	store     *tokens.Store
	refresher *Refresher
	transport *AuthTransport
	client    *APIClient
	http      *http.Client
	renewed   *pathRecorder
	ended     *atomic.Int32
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	api := apitest.NewServer(t)
	repo := metadata.NewMemoryRepository()
	store := tokens.NewStore(repo)
	base := api.Client().Transport

	refresher := NewRefresher(api.URL, base, store, 5*time.Second, nil)
	transport := NewAuthTransport(base, refresher, nil)
	renewed := &pathRecorder{}
	ended := &atomic.Int32{}
	require.NoError(t, transport.Configure(Hooks{
		AccessToken:      store.AccessToken,
		OnSessionRenewed: renewed.record,
		OnRefreshFailed:  func(context.Context) { ended.Add(1) },
	}))

	return &harness{
		api:       api,
		repo:      repo,
		store:     store,
		refresher: refresher,
		transport: transport,
		client:    NewAPIClient(api.URL, transport, 5*time.Second),
		http:      &http.Client{Transport: transport},
		renewed:   renewed,
		ended:     ended,
	}
}

// login seeds the store with a fresh pair for a new user and returns the
// pair and the user id.
func (h *harness) login(t *testing.T) (apitest.Pair, string) {
	t.Helper()
	userID := h.api.AddUser("ann@example.com", "secret")
	pair := h.api.Issue(userID)
	require.NoError(t, h.store.SetTokens(context.Background(), pair.AccessToken, pair.RefreshToken))
	return pair, userID
}

// staleSession seeds a session whose access token the server no longer
// accepts.
func (h *harness) staleSession(t *testing.T) (apitest.Pair, string) {
	t.Helper()
	pair, userID := h.login(t)
	h.api.ExpireAccessTokens()
	return pair, userID
}
