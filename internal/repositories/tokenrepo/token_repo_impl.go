package tokenrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/internal/infrastructure/database"
	"github.com/fundbridge/donate/internal/repositories/tokenrepo/gen"
)

type TokenRepository struct {
	store  *gen.Queries
	logger zerolog.Logger
}

func New(db *database.DBManager, logger zerolog.Logger) ITokenRepository {
	return NewWithDB(db.Db, logger)
}

func NewWithDB(db *sql.DB, logger zerolog.Logger) *TokenRepository {
	return &TokenRepository{
		store:  gen.New(db),
		logger: logger.With().Str("component", "token_repo").Logger(),
	}
}

func (r *TokenRepository) GetLatest(ctx context.Context) (*domain.Token, error) {
	row, err := r.store.GetLatestToken(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error().Err(err).Msg("Failed to read token")
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	return &domain.Token{
		ID:           int(row.ID),
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		ExpiresAt:    row.ExpiresAt,
		RefreshedAt:  row.RefreshedAt,
	}, nil
}

func (r *TokenRepository) Upsert(ctx context.Context, token *domain.Token) error {
	err := r.store.UpsertToken(ctx, gen.UpsertTokenParams{
		ID:           domain.TokenRecordID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.ExpiresAt,
		RefreshedAt:  token.RefreshedAt,
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to save token")
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}
