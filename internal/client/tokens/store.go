// Package tokens holds the client's credentials. The access token lives only
// in memory; the refresh token is kept in durable storage so a session can
// be resumed after a restart.
package tokens

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/teamhub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/teamhub/internal/common"
)

// Store is the single source of truth for both token kinds. It is safe for
// concurrent use. An empty string stands for "no token".
type Store struct {
	mu          sync.RWMutex
	accessToken string
	repo        metadata.Repository
}

func NewStore(repo metadata.Repository) *Store {
	return &Store{repo: repo}
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Store) SetAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, common.RefreshTokenKey)
	if err != nil {
		return "", fmt.Errorf("read refresh token: %w", err)
	}
	return string(v), nil
}

// SetRefreshToken persists token, or removes the stored one when token is empty.
func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	return writeRefreshToken(ctx, s.repo, token)
}

// SetTokens stores a freshly issued pair. The access token is replaced only
// after the refresh token has been persisted.
func (s *Store) SetTokens(ctx context.Context, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeRefreshToken(ctx, s.repo, refresh); err != nil {
		return err
	}
	s.accessToken = access
	return nil
}

// Clear drops both tokens. Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.accessToken = ""
	s.mu.Unlock()

	if err := s.repo.Delete(ctx, common.RefreshTokenKey); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

func writeRefreshToken(ctx context.Context, repo metadata.Repository, token string) error {
	if token == "" {
		if err := repo.Delete(ctx, common.RefreshTokenKey); err != nil {
			return fmt.Errorf("remove refresh token: %w", err)
		}
		return nil
	}
	if err := repo.Set(ctx, common.RefreshTokenKey, []byte(token)); err != nil {
		return fmt.Errorf("write refresh token: %w", err)
	}
	return nil
}
