package authservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/pkg/config"
)

var (
	ErrSecretNotConfigured = errors.New("JWT secret not configured")
	ErrInvalidToken        = errors.New("invalid token")
)

type AuthService struct {
	secret []byte
	issuer string
	now    func() time.Time
	logger zerolog.Logger
}

func NewAuthService(cfg config.SecurityConfig, logger zerolog.Logger) *AuthService {
	return &AuthService{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.JWTIssuer,
		now:    time.Now,
		logger: logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*domain.DonorClaims, error) {
	if len(s.secret) == 0 {
		s.logger.Error().Msg("JWT secret not configured")
		return nil, ErrSecretNotConfigured
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &domain.DonorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to parse donor token")
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*domain.DonorClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(s.now()) {
		s.logger.Warn().Str("subject", claims.Subject).Msg("Donor token expired")
		return nil, fmt.Errorf("%w: token expired", ErrInvalidToken)
	}

	if s.issuer != "" && !claims.VerifyIssuer(s.issuer, true) {
		s.logger.Warn().Str("issuer", claims.Issuer).Msg("Invalid issuer")
		return nil, fmt.Errorf("%w: invalid issuer", ErrInvalidToken)
	}

	return claims, nil
}
