package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeyParamoshkin/blog/internal/auth"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/store"
)

type PromoteStore interface {
	SetStaff(ctx context.Context, username string, staff bool) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetToken(ctx context.Context, userID uint) (*model.AuthToken, error)
}

var (
	_ PromoteStore = (*store.Gorm)(nil)
	_ PromoteStore = (*store.Memory)(nil)
)

// Promote grants staff rights to username and evicts the user's token from
// cache, so the next request sees the new flag. cache may be nil.
func Promote(ctx context.Context, s PromoteStore, cache auth.Cache, username string) error {
	if err := s.SetStaff(ctx, username, true); err != nil {
		return fmt.Errorf("promote %q: %w", username, err)
	}
	if cache == nil {
		return nil
	}

	u, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("promote %q: %w", username, err)
	}
	tok, err := s.GetToken(ctx, u.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("promote %q: %w", username, err)
	}
	cache.Delete(ctx, tok.Key)

	return nil
}
