package donationrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/internal/infrastructure/database"
	"github.com/fundbridge/donate/internal/repositories/donationrepo/gen"
)

type DonationRepository struct {
	db     *sql.DB
	store  *gen.Queries
	logger zerolog.Logger
}

func New(db *database.DBManager, logger zerolog.Logger) IDonationRepository {
	return NewWithDB(db.Db, logger)
}

func NewWithDB(db *sql.DB, logger zerolog.Logger) *DonationRepository {
	return &DonationRepository{
		db:     db,
		store:  gen.New(db),
		logger: logger.With().Str("component", "donation_repo").Logger(),
	}
}

func (r *DonationRepository) Create(ctx context.Context, donation *domain.Donation) (*domain.Donation, error) {
	return create(ctx, r.store, r.logger, donation)
}

func (r *DonationRepository) SetPledgeIdentifiers(ctx context.Context, id uuid.UUID, pledgeID, depositAddress string) error {
	err := r.store.SetPledgeIdentifiers(ctx, gen.SetPledgeIdentifiersParams{
		ID:             id,
		PledgeID:       nullString(pledgeID),
		DepositAddress: nullString(depositAddress),
	})
	if err != nil {
		r.logger.Error().Err(err).Str("donation_id", id.String()).Msg("Failed to set pledge identifiers")
		return fmt.Errorf("failed to set pledge identifiers: %w", err)
	}
	return nil
}

func (r *DonationRepository) SetSuccessByPledgeID(ctx context.Context, pledgeID string, success bool) error {
	n, err := r.store.SetSuccessByPledgeID(ctx, gen.SetSuccessByPledgeIDParams{
		PledgeID: nullString(pledgeID),
		Success:  sql.NullBool{Bool: success, Valid: true},
	})
	if err != nil {
		r.logger.Error().Err(err).Str("pledge_id", pledgeID).Msg("Failed to update donation outcome")
		return fmt.Errorf("failed to update donation outcome: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("donation with pledge %s: %w", pledgeID, domain.ErrNotFound)
	}
	return nil
}

func (r *DonationRepository) SetSuccessByDonationUUID(ctx context.Context, donationUUID string, success bool) error {
	n, err := r.store.SetSuccessByDonationUUID(ctx, gen.SetSuccessByDonationUUIDParams{
		DonationUuid: nullString(donationUUID),
		Success:      sql.NullBool{Bool: success, Valid: true},
	})
	if err != nil {
		r.logger.Error().Err(err).Str("donation_uuid", donationUUID).Msg("Failed to update donation outcome")
		return fmt.Errorf("failed to update donation outcome: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("donation %s: %w", donationUUID, domain.ErrNotFound)
	}
	return nil
}

func (r *DonationRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	if err := r.store.MarkDonationFailed(ctx, id); err != nil {
		r.logger.Error().Err(err).Str("donation_id", id.String()).Msg("Failed to mark donation failed")
		return fmt.Errorf("failed to mark donation failed: %w", err)
	}
	return nil
}

func (r *DonationRepository) GetByPledgeID(ctx context.Context, pledgeID string) (*domain.Donation, error) {
	row, err := r.store.GetDonationByPledgeID(ctx, nullString(pledgeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("donation with pledge %s: %w", pledgeID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}
	return toDomain(row)
}

func (r *DonationRepository) ListByProjectAndStatuses(ctx context.Context, projectSlug string, statuses []string) ([]*domain.Donation, error) {
	rows, err := r.store.ListDonationsByProjectAndStatuses(ctx, gen.ListDonationsByProjectAndStatusesParams{
		ProjectSlug: projectSlug,
		Statuses:    statuses,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("project_slug", projectSlug).Msg("Failed to list donations")
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}

	result := make([]*domain.Donation, 0, len(rows))
	for _, row := range rows {
		d, err := toDomain(row)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, nil
}

func (r *DonationRepository) SumSuccessfulUSD(ctx context.Context) (decimal.Decimal, error) {
	total, err := r.store.SumSuccessfulUSD(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum donations: %w", err)
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid donation total %q: %w", total, err)
	}
	return d, nil
}

func (r *DonationRepository) CountDistinctProjects(ctx context.Context) (int64, error) {
	n, err := r.store.CountDistinctProjects(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return n, nil
}

func (r *DonationRepository) WithinTx(ctx context.Context, fn func(tx IDonationTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&donationTx{store: r.store.WithTx(tx), logger: r.logger}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Error().Err(rbErr).Msg("Failed to roll back donation transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type donationTx struct {
	store  *gen.Queries
	logger zerolog.Logger
}

func (t *donationTx) Create(ctx context.Context, donation *domain.Donation) (*domain.Donation, error) {
	return create(ctx, t.store, t.logger, donation)
}

func (t *donationTx) SetDonationUUID(ctx context.Context, id uuid.UUID, donationUUID string) error {
	err := t.store.SetDonationUUID(ctx, gen.SetDonationUUIDParams{
		ID:           id,
		DonationUuid: nullString(donationUUID),
	})
	if err != nil {
		t.logger.Error().Err(err).Str("donation_id", id.String()).Msg("Failed to set donation uuid")
		return fmt.Errorf("failed to set donation uuid: %w", err)
	}
	return nil
}

func create(ctx context.Context, store *gen.Queries, logger zerolog.Logger, d *domain.Donation) (*domain.Donation, error) {
	id := d.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row, err := store.CreateDonation(ctx, gen.CreateDonationParams{
		ID:               id,
		ProjectSlug:      d.ProjectSlug,
		OrganizationID:   d.OrganizationID,
		DonationType:     string(d.DonationType),
		AssetSymbol:      d.AssetSymbol,
		AssetDescription: nullString(d.AssetDescription),
		PledgeAmount:     d.PledgeAmount.String(),
		FirstName:        nullString(d.FirstName),
		LastName:         nullString(d.LastName),
		DonorEmail:       nullString(d.DonorEmail),
		SocialX:          nullString(d.SocialX),
		SocialFacebook:   nullString(d.SocialFacebook),
		SocialLinkedin:   nullString(d.SocialLinkedIn),
		IsAnonymous:      d.IsAnonymous,
		TaxReceipt:       d.TaxReceipt,
		JoinMailingList:  d.JoinMailingList,
	})
	if err != nil {
		logger.Error().Err(err).Str("project_slug", d.ProjectSlug).Str("type", string(d.DonationType)).Msg("Failed to create donation")
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}
	return toDomain(row)
}

func toDomain(row gen.Donation) (*domain.Donation, error) {
	amount, err := decimal.NewFromString(row.PledgeAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid pledge amount %q: %w", row.PledgeAmount, err)
	}

	d := &domain.Donation{
		ID:               row.ID,
		ProjectSlug:      row.ProjectSlug,
		OrganizationID:   row.OrganizationID,
		DonationType:     domain.DonationType(row.DonationType),
		AssetSymbol:      row.AssetSymbol,
		AssetDescription: row.AssetDescription.String,
		PledgeAmount:     amount,
		FirstName:        row.FirstName.String,
		LastName:         row.LastName.String,
		DonorEmail:       row.DonorEmail.String,
		SocialX:          row.SocialX.String,
		SocialFacebook:   row.SocialFacebook.String,
		SocialLinkedIn:   row.SocialLinkedin.String,
		IsAnonymous:      row.IsAnonymous,
		TaxReceipt:       row.TaxReceipt,
		JoinMailingList:  row.JoinMailingList,
		PledgeID:         row.PledgeID.String,
		DepositAddress:   row.DepositAddress.String,
		DonationUUID:     row.DonationUuid.String,
		Status:           row.Status.String,
		Processed:        row.Processed,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}

	if row.ValueAtDonationTimeUsd.Valid {
		v, err := decimal.NewFromString(row.ValueAtDonationTimeUsd.String)
		if err != nil {
			return nil, fmt.Errorf("invalid usd value %q: %w", row.ValueAtDonationTimeUsd.String, err)
		}
		d.ValueAtDonationTimeUSD = decimal.NullDecimal{Decimal: v, Valid: true}
	}
	if row.Success.Valid {
		success := row.Success.Bool
		d.Success = &success
	}
	return d, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
