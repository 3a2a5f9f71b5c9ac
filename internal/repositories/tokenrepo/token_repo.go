package tokenrepo

import (
	"context"

	"github.com/fundbridge/donate/internal/domain"
)

// ITokenRepository stores the single shared payment API token.
type ITokenRepository interface {
	// GetLatest returns the most recently refreshed token, or
	// domain.ErrNotFound when none has been stored yet.
	GetLatest(ctx context.Context) (*domain.Token, error)
	// Upsert replaces the token row. Concurrent writers race; the last one wins.
	Upsert(ctx context.Context, token *domain.Token) error
}
