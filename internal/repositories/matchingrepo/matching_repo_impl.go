package matchingrepo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/internal/infrastructure/database"
	"github.com/fundbridge/donate/internal/repositories/matchingrepo/gen"
)

type MatchingRepository struct {
	store  *gen.Queries
	logger zerolog.Logger
}

func New(db *database.DBManager, logger zerolog.Logger) IMatchingRepository {
	return NewWithDB(db.Db, logger)
}

func NewWithDB(db *sql.DB, logger zerolog.Logger) *MatchingRepository {
	return &MatchingRepository{
		store:  gen.New(db),
		logger: logger.With().Str("component", "matching_repo").Logger(),
	}
}

func (r *MatchingRepository) SumMatchedAmount(ctx context.Context) (decimal.Decimal, error) {
	total, err := r.store.SumMatchedAmount(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to sum matched amounts")
		return decimal.Zero, fmt.Errorf("failed to sum matched amounts: %w", err)
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid matched total %q: %w", total, err)
	}
	return d, nil
}

func (r *MatchingRepository) TotalsByProject(ctx context.Context, projectSlug string) ([]domain.MatchingDonorTotal, error) {
	rows, err := r.store.SumMatchedAmountByProject(ctx, projectSlug)
	if err != nil {
		r.logger.Error().Err(err).Str("project_slug", projectSlug).Msg("Failed to load matching totals")
		return nil, fmt.Errorf("failed to load matching totals: %w", err)
	}

	result := make([]domain.MatchingDonorTotal, 0, len(rows))
	for _, row := range rows {
		total, err := decimal.NewFromString(row.TotalMatched)
		if err != nil {
			return nil, fmt.Errorf("invalid matched total %q: %w", row.TotalMatched, err)
		}
		result = append(result, domain.MatchingDonorTotal{
			MatchingDonorID: row.MatchingDonorID,
			Name:            row.Name,
			TotalMatched:    total,
		})
	}
	return result, nil
}
