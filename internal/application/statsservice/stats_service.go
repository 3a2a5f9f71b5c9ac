package statsservice

import (
	"context"
	"time"

	"github.com/fundbridge/donate/internal/domain"
)

// IStatsService aggregates the donation ledger for project pages and the
// landing page counters.
type IStatsService interface {
	ProjectFunding(ctx context.Context, slug string) (*domain.ProjectFunding, error)
	Stats(ctx context.Context) (*domain.Stats, error)
	MatchingDonors(ctx context.Context, slug string) ([]domain.MatchingDonorTotal, error)
}

type Cache interface {
	GetJSON(ctx context.Context, key string, out interface{}) error
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
}
