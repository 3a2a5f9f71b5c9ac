package tokenservice

import (
	"context"

	"golang.org/x/oauth2"
)

// ITokenService hands out the shared payment API bearer token.
type ITokenService interface {
	// AccessToken returns the stored token while it is valid, otherwise
	// refreshes it, falling back to a full login.
	AccessToken(ctx context.Context) (*oauth2.Token, error)
	// ForceRefresh ignores the stored expiry and obtains a new token.
	ForceRefresh(ctx context.Context) (*oauth2.Token, error)
}

// Authenticator exchanges credentials or a refresh token for a token pair.
type Authenticator interface {
	Login(ctx context.Context, login, password string) (*oauth2.Token, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}
