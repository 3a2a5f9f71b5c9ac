package matchingrepo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fundbridge/donate/internal/domain"
)

type IMatchingRepository interface {
	SumMatchedAmount(ctx context.Context) (decimal.Decimal, error)
	TotalsByProject(ctx context.Context, projectSlug string) ([]domain.MatchingDonorTotal, error)
}
