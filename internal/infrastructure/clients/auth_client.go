package clients

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/pkg/config"
)

// AuthClient exchanges credentials and refresh tokens for bearer tokens.
type AuthClient struct {
	t *transport
}

func NewAuthClient(cfg config.PaymentAPIConfig, logger zerolog.Logger) *AuthClient {
	return &AuthClient{
		t: newTransport(cfg, logger.With().Str("component", "payment_auth_client").Logger()),
	}
}

// Login posts the configured credentials to /login.
func (c *AuthClient) Login(ctx context.Context, login, password string) (*oauth2.Token, error) {
	body, err := c.t.do(ctx, http.MethodPost, "/login", credentialsPayload{Login: login, Password: password}, requestOptions{})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return decodeTokenPair(body)
}

// RefreshTokens trades a refresh token for a new pair.
func (c *AuthClient) RefreshTokens(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	body, err := c.t.do(ctx, http.MethodPost, "/refresh-tokens", refreshPayload{RefreshToken: refreshToken}, requestOptions{})
	if err != nil {
		return nil, fmt.Errorf("refresh tokens: %w", err)
	}
	return decodeTokenPair(body)
}

func decodeTokenPair(body []byte) (*oauth2.Token, error) {
	var pair tokenPair
	if err := decodeData(body, &pair); err != nil {
		return nil, err
	}
	if pair.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing accessToken", domain.ErrInvalidUpstreamResponse)
	}
	return &oauth2.Token{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	}, nil
}
