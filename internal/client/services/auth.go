// Package services contains application services for the teamhub client.
// This file defines the authentication service: login and logout, account
// flows, and the session lifecycle that ties the token store, the HTTP
// interceptor and the session timer together.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/teamhub/internal/client/client"
	"github.com/dmitrijs2005/teamhub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/teamhub/internal/client/session"
	"github.com/dmitrijs2005/teamhub/internal/client/tokens"
	"github.com/dmitrijs2005/teamhub/internal/common"
	"github.com/dmitrijs2005/teamhub/internal/logging"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Bootstrap: restore a persisted session at startup.
//   - Login / Logout: start and end a session.
//   - StayConnected: prove the session is alive and extend it.
//   - Register, VerifyEmail, ForgotPassword, ResetPassword: account flows.
//   - CurrentUser, Teams: authenticated reads.
//   - Status: what the client currently knows about the session.
//   - Close: stop background work, keeping the persisted session.
type AuthService interface {
	Bootstrap(ctx context.Context) (bool, error)
	Login(ctx context.Context, email, password string) (*client.User, error)
	Logout(ctx context.Context) error
	StayConnected(ctx context.Context) error
	Register(ctx context.Context, req client.RegisterRequest) error
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	CurrentUser(ctx context.Context) (*client.User, error)
	Teams(ctx context.Context) ([]client.Team, error)
	Status(ctx context.Context) (Status, error)
	Close()
}

// Status describes the local view of the session.
type Status struct {
	Authenticated bool
	Session       session.State
	Remaining     time.Duration
	// Claims is nil when there is no access token in memory or it is not a JWT.
	Claims *tokens.Claims
}

// HookConfigurer is implemented by client.AuthTransport.
type HookConfigurer interface {
	Configure(h client.Hooks) error
}

type authService struct {
	api    client.Client
	tokens *tokens.Store
	repo   metadata.Repository
	timer  *session.Timer
	now    func() time.Time
	log    logging.Logger
}

// NewAuthService wires the session lifecycle. The timer is built from opts;
// opts.OnExpired, if set, is called after the expired session has been
// logged out. The transport hooks are installed on transport.
func NewAuthService(
	api client.Client,
	transport HookConfigurer,
	store *tokens.Store,
	repo metadata.Repository,
	opts session.Options,
	log logging.Logger,
) (AuthService, error) {
	if log == nil {
		log = logging.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log
	}

	s := &authService{
		api:    api,
		tokens: store,
		repo:   repo,
		now:    opts.Now,
		log:    log.With("component", "auth-service"),
	}

	notify := opts.OnExpired
	opts.OnExpired = func(ctx context.Context) {
		if err := s.Logout(ctx); err != nil {
			s.log.Error(ctx, "logout after session expiry failed", "error", err)
		}
		if notify != nil {
			notify(ctx)
		}
	}
	s.timer = session.NewTimer(session.NewExpiryStore(repo), opts)

	if err := transport.Configure(client.Hooks{
		AccessToken:      store.AccessToken,
		OnSessionRenewed: s.onSessionRenewed,
		OnRefreshFailed:  s.onRefreshFailed,
	}); err != nil {
		return nil, fmt.Errorf("configure transport: %w", err)
	}
	return s, nil
}

// onSessionRenewed extends the session after a session-renewing call. A
// call made without credentials (a failed login) renews nothing.
func (s *authService) onSessionRenewed(ctx context.Context, path string) {
	if s.tokens.AccessToken() == "" {
		return
	}
	if err := s.timer.Reset(ctx); err != nil {
		s.log.Error(ctx, "failed to extend session", "path", path, "error", err)
	}
}

// onRefreshFailed ends the session locally. The refresher has already
// cleared the tokens; the countdown and the stored expiry go with them.
func (s *authService) onRefreshFailed(ctx context.Context) {
	if err := s.timer.Stop(ctx); err != nil {
		s.log.Error(ctx, "failed to stop session after refresh failure", "error", err)
		return
	}
	s.log.Info(ctx, "session ended: token refresh failed")
}

// Bootstrap resumes a session persisted by a previous run. The access token
// is not persisted; it is obtained on the first request that needs it.
// Leftovers of a dead session are removed.
func (s *authService) Bootstrap(ctx context.Context) (bool, error) {
	rt, err := s.tokens.RefreshToken(ctx)
	if err != nil {
		return false, err
	}

	if rt != "" {
		live, err := s.timer.Resume(ctx)
		if err != nil {
			return false, fmt.Errorf("resume session: %w", err)
		}
		if live {
			return true, nil
		}
	}

	err = s.repo.Update(ctx, func(ctx context.Context, r metadata.Repository) error {
		if err := r.Delete(ctx, common.RefreshTokenKey); err != nil {
			return err
		}
		return r.Delete(ctx, common.SessionExpiresAtKey)
	})
	if err != nil {
		return false, fmt.Errorf("clear stale session: %w", err)
	}
	return false, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*client.User, error) {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.SetTokens(ctx, res.AccessToken, res.RefreshToken); err != nil {
		return nil, fmt.Errorf("store tokens: %w", err)
	}
	if err := s.timer.Reset(ctx); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	s.log.Info(ctx, "logged in", "user_id", res.User.ID)
	return &res.User, nil
}

// Logout ends the session locally and then tells the server. Local state is
// always cleared; a failed server call is only logged.
func (s *authService) Logout(ctx context.Context) error {
	rt, err := s.tokens.RefreshToken(ctx)
	if err != nil {
		s.log.Warn(ctx, "cannot read refresh token for logout", "error", err)
	}

	if err := s.timer.Stop(ctx); err != nil {
		return fmt.Errorf("stop session: %w", err)
	}
	if err := s.tokens.Clear(ctx); err != nil {
		return err
	}

	if rt != "" {
		if err := s.api.Logout(ctx, rt); err != nil {
			s.log.Warn(ctx, "server logout failed", "error", err)
		}
	}
	s.log.Info(ctx, "logged out")
	return nil
}

// StayConnected proves the session is alive with /auth/me and then extends
// it. The renewal hook has already reset the timer at that point; the
// explicit call reports a failure to persist the new expiry to the caller.
func (s *authService) StayConnected(ctx context.Context) error {
	if _, err := s.api.CurrentUser(ctx); err != nil {
		return err
	}
	if err := s.timer.StayConnected(ctx); err != nil {
		return fmt.Errorf("extend session: %w", err)
	}
	return nil
}

func (s *authService) Register(ctx context.Context, req client.RegisterRequest) error {
	return s.api.Register(ctx, req)
}

func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	return s.api.VerifyEmail(ctx, token)
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	return s.api.ForgotPassword(ctx, email)
}

func (s *authService) ResetPassword(ctx context.Context, token, password string) error {
	return s.api.ResetPassword(ctx, token, password)
}

func (s *authService) CurrentUser(ctx context.Context) (*client.User, error) {
	return s.api.CurrentUser(ctx)
}

func (s *authService) Teams(ctx context.Context) ([]client.Team, error) {
	return s.api.Teams(ctx)
}

func (s *authService) Status(ctx context.Context) (Status, error) {
	st := Status{Session: s.timer.Snapshot()}
	st.Remaining = st.Session.Remaining(s.now())

	access := s.tokens.AccessToken()
	if access != "" {
		if c, err := tokens.InspectAccessToken(access); err == nil {
			st.Claims = &c
		}
		st.Authenticated = true
		return st, nil
	}

	rt, err := s.tokens.RefreshToken(ctx)
	if err != nil {
		return Status{}, err
	}
	st.Authenticated = rt != ""
	return st, nil
}

func (s *authService) Close() {
	s.timer.Close()
}
