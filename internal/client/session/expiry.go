package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/teamhub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/teamhub/internal/common"
)

// ExpiryStore persists the absolute session expiry as epoch milliseconds in
// decimal form under common.SessionExpiresAtKey.
type ExpiryStore struct {
	repo metadata.Repository
}

func NewExpiryStore(repo metadata.Repository) *ExpiryStore {
	return &ExpiryStore{repo: repo}
}

// Get returns the stored expiry. ok is false when nothing usable is stored;
// an unparsable value counts as absent.
func (s *ExpiryStore) Get(ctx context.Context) (t time.Time, ok bool, err error) {
	raw, err := s.repo.Get(ctx, common.SessionExpiresAtKey)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read session expiry: %w", err)
	}
	if raw == nil {
		return time.Time{}, false, nil
	}
	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

func (s *ExpiryStore) Set(ctx context.Context, t time.Time) error {
	v := strconv.FormatInt(t.UnixMilli(), 10)
	if err := s.repo.Set(ctx, common.SessionExpiresAtKey, []byte(v)); err != nil {
		return fmt.Errorf("write session expiry: %w", err)
	}
	return nil
}

func (s *ExpiryStore) Remove(ctx context.Context) error {
	if err := s.repo.Delete(ctx, common.SessionExpiresAtKey); err != nil {
		return fmt.Errorf("remove session expiry: %w", err)
	}
	return nil
}
