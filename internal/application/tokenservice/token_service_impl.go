package tokenservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/internal/repositories/tokenrepo"
	"github.com/fundbridge/donate/pkg/config"
)

const flightKey = "access-token"

type tokenService struct {
	repo     tokenrepo.ITokenRepository
	auth     Authenticator
	login    string
	password string
	validity time.Duration
	now      func() time.Time
	group    singleflight.Group
	logger   zerolog.Logger
}

// Option customises a token service.
type Option func(*tokenService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *tokenService) { s.now = now }
}

func New(repo tokenrepo.ITokenRepository, auth Authenticator, cfg config.PaymentAPIConfig, logger zerolog.Logger, opts ...Option) ITokenService {
	s := &tokenService{
		repo:     repo,
		auth:     auth,
		login:    cfg.Login,
		password: cfg.Password,
		validity: cfg.TokenValidity,
		now:      time.Now,
		logger:   logger.With().Str("component", "token_service").Logger(),
	}
	if s.validity <= 0 {
		s.validity = 2 * time.Hour
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *tokenService) AccessToken(ctx context.Context) (*oauth2.Token, error) {
	stored, err := s.repo.GetLatest(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Error().Err(err).Msg("Failed to read stored token")
		stored = nil
	}
	if stored.Valid(s.now()) {
		return toOAuth(stored), nil
	}
	return s.renew(ctx, stored)
}

func (s *tokenService) ForceRefresh(ctx context.Context) (*oauth2.Token, error) {
	stored, err := s.repo.GetLatest(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to read stored token: %w", err)
	}
	return s.renew(ctx, stored)
}

// renew collapses concurrent renewals inside this process into one. Across
// processes the upsert is last-write-wins.
func (s *tokenService) renew(ctx context.Context, stored *domain.Token) (*oauth2.Token, error) {
	v, err, _ := s.group.Do(flightKey, func() (interface{}, error) {
		return s.obtain(ctx, stored)
	})
	if err != nil {
		return nil, err
	}
	return v.(*oauth2.Token), nil
}

func (s *tokenService) obtain(ctx context.Context, stored *domain.Token) (*oauth2.Token, error) {
	var (
		pair *oauth2.Token
		err  error
	)
	if stored != nil && stored.RefreshToken != "" {
		pair, err = s.auth.RefreshTokens(ctx, stored.RefreshToken)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Token refresh failed, logging in again")
		}
	}
	if pair == nil {
		pair, err = s.auth.Login(ctx, s.login, s.password)
		if err != nil {
			s.logger.Error().Err(err).Msg("Payment API login failed")
			return nil, fmt.Errorf("%w: %v", domain.ErrUnableToObtainToken, err)
		}
	}

	now := s.now()
	record := &domain.Token{
		ID:           domain.TokenRecordID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    now.Add(s.validity),
		RefreshedAt:  now,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist access token")
		return nil, fmt.Errorf("%w: %v", domain.ErrUnableToObtainToken, err)
	}
	s.logger.Info().Time("expires_at", record.ExpiresAt).Msg("Payment API token renewed")
	return toOAuth(record), nil
}

func toOAuth(t *domain.Token) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       t.ExpiresAt,
	}
}
