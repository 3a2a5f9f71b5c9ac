package authservice

import (
	"context"

	"github.com/fundbridge/donate/internal/domain"
)

// IAuthService verifies donor session tokens from the social login provider.
type IAuthService interface {
	VerifyToken(ctx context.Context, tokenString string) (*domain.DonorClaims, error)
}
