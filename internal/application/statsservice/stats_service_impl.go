package statsservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/internal/infrastructure/cache"
	"github.com/fundbridge/donate/internal/repositories/donationrepo"
	"github.com/fundbridge/donate/internal/repositories/matchingrepo"
)

const statsCacheKey = "stats"

var fundedStatuses = []string{domain.DonationStatusComplete, domain.DonationStatusAdvanced}

type statsService struct {
	donationRepo donationrepo.IDonationRepository
	matchingRepo matchingrepo.IMatchingRepository
	cache        Cache
	ttl          time.Duration
	logger       zerolog.Logger
}

func New(
	donationRepo donationrepo.IDonationRepository,
	matchingRepo matchingrepo.IMatchingRepository,
	kv Cache,
	ttl time.Duration,
	logger zerolog.Logger,
) IStatsService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &statsService{
		donationRepo: donationRepo,
		matchingRepo: matchingRepo,
		cache:        kv,
		ttl:          ttl,
		logger:       logger.With().Str("component", "stats_service").Logger(),
	}
}

// ProjectFunding sums the Complete and Advanced donations of one project.
// Amounts stay decimal until the response boundary.
func (s *statsService) ProjectFunding(ctx context.Context, slug string) (*domain.ProjectFunding, error) {
	if slug == "" {
		return nil, domain.Invalid("Slug is required")
	}

	rows, err := s.donationRepo.ListByProjectAndStatuses(ctx, slug, fundedStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}

	funding := &domain.ProjectFunding{
		Supporters:         []string{},
		DonatedCreatedTime: make([]domain.DonationMoment, 0, len(rows)),
	}
	total := decimal.Zero
	for _, row := range rows {
		value := decimal.Zero
		if row.ValueAtDonationTimeUSD.Valid {
			value = row.ValueAtDonationTimeUSD.Decimal
		}
		total = total.Add(value)
		if row.SocialX != "" {
			funding.Supporters = append(funding.Supporters, row.SocialX)
		}
		funding.DonatedCreatedTime = append(funding.DonatedCreatedTime, domain.DonationMoment{
			ValueAtDonationTimeUSD: value.InexactFloat64(),
			CreatedTime:            row.CreatedAt.UTC(),
		})
	}
	funding.FundedTxoSum = total.InexactFloat64()
	funding.TxCount = len(rows)
	return funding, nil
}

func (s *statsService) Stats(ctx context.Context) (*domain.Stats, error) {
	if s.cache != nil {
		var hit domain.Stats
		err := s.cache.GetJSON(ctx, statsCacheKey, &hit)
		if err == nil {
			return &hit, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn().Err(err).Msg("Stats cache read failed")
		}
	}

	var (
		projects int64
		raised   decimal.Decimal
		matched  decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = s.donationRepo.CountDistinctProjects(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		raised, err = s.donationRepo.SumSuccessfulUSD(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		matched, err = s.matchingRepo.SumMatchedAmount(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}

	stats := &domain.Stats{
		ProjectsSupported: int(projects),
		DonationsRaised:   raised.InexactFloat64(),
		DonationsMatched:  matched.InexactFloat64(),
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, statsCacheKey, stats, s.ttl); err != nil {
			s.logger.Warn().Err(err).Msg("Stats cache write failed")
		}
	}
	return stats, nil
}

func (s *statsService) MatchingDonors(ctx context.Context, slug string) ([]domain.MatchingDonorTotal, error) {
	if slug == "" {
		return nil, domain.Invalid("Project slug is required")
	}
	totals, err := s.matchingRepo.TotalsByProject(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to total matching donations: %w", err)
	}
	if totals == nil {
		totals = []domain.MatchingDonorTotal{}
	}
	return totals, nil
}
