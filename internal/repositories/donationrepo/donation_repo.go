package donationrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundbridge/donate/internal/domain"
)

// IDonationRepository is the donation ledger. Rows are created and updated,
// never deleted.
type IDonationRepository interface {
	Create(ctx context.Context, donation *domain.Donation) (*domain.Donation, error)
	SetPledgeIdentifiers(ctx context.Context, id uuid.UUID, pledgeID, depositAddress string) error
	SetSuccessByPledgeID(ctx context.Context, pledgeID string, success bool) error
	SetSuccessByDonationUUID(ctx context.Context, donationUUID string, success bool) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	GetByPledgeID(ctx context.Context, pledgeID string) (*domain.Donation, error)
	ListByProjectAndStatuses(ctx context.Context, projectSlug string, statuses []string) ([]*domain.Donation, error)
	SumSuccessfulUSD(ctx context.Context) (decimal.Decimal, error)
	CountDistinctProjects(ctx context.Context) (int64, error)
	// WithinTx runs fn in one transaction, committing only when fn returns nil.
	WithinTx(ctx context.Context, fn func(tx IDonationTx) error) error
}

// IDonationTx is the subset of ledger writes available inside WithinTx.
type IDonationTx interface {
	Create(ctx context.Context, donation *domain.Donation) (*domain.Donation, error)
	SetDonationUUID(ctx context.Context, id uuid.UUID, donationUUID string) error
}
