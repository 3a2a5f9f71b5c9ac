package pledgeservice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/internal/infrastructure/cache"
	"github.com/fundbridge/donate/internal/infrastructure/clients"
	"github.com/fundbridge/donate/internal/repositories/donationrepo"
	"github.com/fundbridge/donate/pkg/config"
	"github.com/fundbridge/donate/pkg/logger"
)

const (
	currenciesCacheKey = "currencies"
	brokersCacheKey    = "brokers"

	defaultTickerPage     = 1
	defaultTickersPerPage = 50
)

type pledgeService struct {
	api          PaymentAPI
	donationRepo donationrepo.IDonationRepository
	cache        Cache
	org          config.OrganizationConfig
	cacheCfg     config.CacheConfig
	logger       zerolog.Logger
}

func New(
	api PaymentAPI,
	donationRepo donationrepo.IDonationRepository,
	kv Cache,
	org config.OrganizationConfig,
	cacheCfg config.CacheConfig,
	logger zerolog.Logger,
) IPledgeService {
	return &pledgeService{
		api:          api,
		donationRepo: donationRepo,
		cache:        kv,
		org:          org,
		cacheCfg:     cacheCfg,
		logger:       logger.With().Str("component", "pledge_service").Logger(),
	}
}

func (s *pledgeService) CreateDepositAddress(ctx context.Context, req domain.PledgeRequest) (*domain.DepositAddress, error) {
	orgID, amount, err := validatePledge(req, "Invalid organizationId. Must be an integer.")
	if err != nil {
		return nil, err
	}

	donation, err := s.donationRepo.Create(ctx, ledgerRow(req, orgID, amount, domain.DonationTypeCrypto))
	if err != nil {
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}

	payload := clients.DepositAddressPayload{
		OrganizationID: orgID,
		IsAnonymous:    req.IsAnonymous,
		PledgeCurrency: req.PledgeCurrency,
		PledgeAmount:   amount.String(),
		ReceiptEmail:   req.ReceiptEmail,
	}
	if !req.IsAnonymous {
		payload.FirstName = req.FirstName
		payload.LastName = req.LastName
		payload.AddressLine1 = req.AddressLine1
		payload.AddressLine2 = req.AddressLine2
		payload.Country = req.Country
		payload.State = req.State
		payload.City = req.City
		payload.Zipcode = req.Zipcode
	}

	deposit, err := s.api.CreateDepositAddress(ctx, payload)
	if err != nil {
		s.logger.Error().Err(err).Str("donation_id", donation.ID.String()).Msg("Failed to create deposit address")
		s.markFailed(ctx, donation.ID)
		return nil, err
	}

	if err := s.donationRepo.SetPledgeIdentifiers(ctx, donation.ID, deposit.PledgeID, deposit.DepositAddress); err != nil {
		s.logger.Error().Err(err).Str("pledge_id", deposit.PledgeID).Msg("Failed to record pledge identifiers")
	}
	s.logger.Info().Str("pledge_id", deposit.PledgeID).Str("currency", req.PledgeCurrency).Msg("Crypto pledge created")
	return deposit, nil
}

func (s *pledgeService) CreateFiatPledge(ctx context.Context, req domain.PledgeRequest) (*domain.FiatPledge, error) {
	orgID, amount, err := validatePledge(req, "Invalid organizationId: must be a number.")
	if err != nil {
		return nil, err
	}

	donation, err := s.donationRepo.Create(ctx, ledgerRow(req, orgID, amount, domain.DonationTypeFiat))
	if err != nil {
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}

	payload := clients.FiatPledgePayload{
		OrganizationID: req.OrganizationID.String(),
		IsAnonymous:    req.IsAnonymous,
		PledgeAmount:   amount.String(),
		FirstName:      clients.Blank(req.FirstName),
		LastName:       clients.Blank(req.LastName),
		ReceiptEmail:   clients.Blank(req.ReceiptEmail),
		AddressLine1:   clients.Blank(req.AddressLine1),
		AddressLine2:   clients.Blank(req.AddressLine2),
		Country:        clients.Blank(req.Country),
		State:          clients.Blank(req.State),
		City:           clients.Blank(req.City),
		Zipcode:        clients.Blank(req.Zipcode),
	}
	s.logger.Debug().
		Str("donation_id", donation.ID.String()).
		Str("receipt_email", logger.MaskEmail(payload.ReceiptEmail)).
		Str("first_name", logger.MaskAll(payload.FirstName)).
		Str("last_name", logger.MaskAll(payload.LastName)).
		Str("address_line1", logger.MaskAll(payload.AddressLine1)).
		Str("pledge_amount", payload.PledgeAmount).
		Msg("Creating fiat pledge")

	pledge, err := s.api.CreateFiatPledge(ctx, payload)
	if err != nil {
		s.logger.Error().Err(err).Str("donation_id", donation.ID.String()).Msg("Failed to create fiat pledge")
		s.markFailed(ctx, donation.ID)
		return nil, err
	}

	if err := s.donationRepo.SetPledgeIdentifiers(ctx, donation.ID, pledge.PledgeID, ""); err != nil {
		s.logger.Error().Err(err).Str("pledge_id", pledge.PledgeID).Msg("Failed to record pledge id")
	}
	s.logger.Info().Str("pledge_id", pledge.PledgeID).Msg("Fiat pledge created")
	return pledge, nil
}

func (s *pledgeService) ChargeFiatPledge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	if req.PledgeID == "" || req.CardToken == "" {
		return nil, domain.Invalid("Missing required fields")
	}

	result, err := s.api.ChargeFiatPledge(ctx, req.PledgeID, req.CardToken)
	if err != nil {
		s.logger.Error().Err(err).Str("pledge_id", req.PledgeID).Msg("Failed to charge fiat pledge")
		if uerr := s.donationRepo.SetSuccessByPledgeID(context.WithoutCancel(ctx), req.PledgeID, false); uerr != nil {
			s.logger.Error().Err(uerr).Str("pledge_id", req.PledgeID).Msg("Failed to mark charge as failed")
		}
		return nil, err
	}

	if err := s.donationRepo.SetSuccessByPledgeID(ctx, req.PledgeID, result.Success); err != nil {
		s.logger.Error().Err(err).Str("pledge_id", req.PledgeID).Bool("success", result.Success).Msg("Failed to record charge outcome")
	}
	s.logger.Info().Str("pledge_id", req.PledgeID).Bool("success", result.Success).Msg("Fiat pledge charged")
	return result, nil
}

// CreateStockPledge writes the ledger row and calls the payment API inside one
// transaction so a failed pledge leaves no row behind.
func (s *pledgeService) CreateStockPledge(ctx context.Context, req domain.StockPledgeRequest) (*domain.StockPledge, error) {
	if req.OrganizationID == "" {
		return nil, domain.Invalid("organizationId is required")
	}
	orgID, err := strconv.ParseInt(strings.TrimSpace(req.OrganizationID.String()), 10, 64)
	if err != nil {
		return nil, domain.Invalid("Invalid organizationId. Must be an integer.")
	}
	amount, err := decimal.NewFromString(req.PledgeAmount.String())
	if err != nil {
		return nil, domain.Invalid("Invalid pledgeAmount.")
	}

	description := req.AssetDescription
	if description == "" {
		description = req.AssetSymbol
	}

	var pledge *domain.StockPledge
	err = s.donationRepo.WithinTx(ctx, func(tx donationrepo.IDonationTx) error {
		donation, err := tx.Create(ctx, &domain.Donation{
			ProjectSlug:      req.ProjectSlug,
			OrganizationID:   orgID,
			DonationType:     domain.DonationTypeStock,
			AssetSymbol:      req.AssetSymbol,
			AssetDescription: description,
			PledgeAmount:     amount,
			FirstName:        req.FirstName,
			LastName:         req.LastName,
			DonorEmail:       req.ReceiptEmail,
			TaxReceipt:       true,
			IsAnonymous:      false,
			JoinMailingList:  req.JoinMailingList,
			SocialX:          req.SocialX,
			SocialFacebook:   req.SocialFacebook,
			SocialLinkedIn:   req.SocialLinkedIn,
		})
		if err != nil {
			return fmt.Errorf("failed to create donation: %w", err)
		}

		pledge, err = s.api.CreateStockPledge(ctx, clients.StockPledgePayload{
			OrganizationID:   req.OrganizationID.String(),
			AssetSymbol:      req.AssetSymbol,
			AssetDescription: description,
			PledgeAmount:     req.PledgeAmount.String(),
			ReceiptEmail:     req.ReceiptEmail,
			FirstName:        req.FirstName,
			LastName:         req.LastName,
			AddressLine1:     req.AddressLine1,
			AddressLine2:     req.AddressLine2,
			Country:          req.Country,
			State:            req.State,
			City:             req.City,
			Zipcode:          req.Zipcode,
			PhoneNumber:      req.PhoneNumber,
		})
		if err != nil {
			return err
		}
		return tx.SetDonationUUID(ctx, donation.ID, pledge.DonationUUID)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("asset_symbol", req.AssetSymbol).Msg("Failed to create stock pledge")
		return nil, err
	}
	s.logger.Info().Str("donation_uuid", pledge.DonationUUID).Str("asset_symbol", req.AssetSymbol).Msg("Stock pledge created")
	return pledge, nil
}

func (s *pledgeService) SubmitStockDonation(ctx context.Context, req domain.BrokerSubmission) (json.RawMessage, error) {
	var missing []string
	if req.DonationUUID == "" {
		missing = append(missing, "donationUuid")
	}
	if req.BrokerName == "" {
		missing = append(missing, "brokerName")
	}
	if req.BrokerageAccountNumber == "" {
		missing = append(missing, "brokerageAccountNumber")
	}
	if err := domain.MissingFields(missing...); err != nil {
		return nil, err
	}

	body, err := s.api.SubmitStockDonation(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).Str("donation_uuid", req.DonationUUID).Msg("Failed to submit broker details")
		return nil, err
	}
	return body, nil
}

func (s *pledgeService) SignStockDonation(ctx context.Context, req domain.SignatureRequest) (*clients.SignResult, error) {
	switch {
	case req.DonationUUID == "":
		return nil, domain.Invalid("Missing field: donationUuid")
	case req.Date == "":
		return nil, domain.Invalid("Missing field: date")
	case req.Signature == "":
		return nil, domain.Invalid("Missing field: signature")
	}
	if !validSignature(req.Signature) {
		return nil, domain.Invalid("Invalid signature: expected a base64 encoded image.")
	}

	result, err := s.api.SignStockDonation(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).Str("donation_uuid", req.DonationUUID).Msg("Failed to sign stock donation")
		return nil, err
	}
	if result.IsSuccess {
		if err := s.donationRepo.SetSuccessByDonationUUID(ctx, req.DonationUUID, true); err != nil {
			s.logger.Error().Err(err).Str("donation_uuid", req.DonationUUID).Msg("Failed to record signature outcome")
		}
	} else {
		s.logger.Warn().Str("donation_uuid", req.DonationUUID).Msg("Signature not accepted")
	}
	return result, nil
}

func (s *pledgeService) Brokers(ctx context.Context) (json.RawMessage, error) {
	return s.cached(ctx, brokersCacheKey, s.cacheCfg.BrokersTTL, func() (json.RawMessage, error) {
		body, err := s.api.GetBrokers(ctx)
		return json.RawMessage(body), err
	})
}

// Tickers runs the name and ticker filters in parallel and merges them,
// name results first, dropping duplicate name-ticker pairs.
func (s *pledgeService) Tickers(ctx context.Context, query domain.TickerQuery) (*domain.TickerPage, error) {
	if query.Pagination == nil {
		return nil, domain.Invalid("Pagination is required")
	}
	var filters domain.TickerFilters
	if query.Filters != nil {
		filters = *query.Filters
	}
	if filters.Name == "" && filters.Ticker == "" {
		return nil, domain.Invalid("Please provide a filter, either name or ticker.")
	}

	page := *query.Pagination
	if page.Page <= 0 {
		page.Page = defaultTickerPage
	}
	if page.ItemsPerPage <= 0 {
		page.ItemsPerPage = defaultTickersPerPage
	}

	var split []domain.TickerFilters
	if filters.Name != "" {
		split = append(split, domain.TickerFilters{Name: filters.Name})
	}
	if filters.Ticker != "" {
		split = append(split, domain.TickerFilters{Ticker: filters.Ticker})
	}

	results := make([]*domain.TickerPage, len(split))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range split {
		i, f := i, f
		g.Go(func() error {
			res, err := s.api.ListTickers(gctx, f, page)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to list tickers")
		return nil, err
	}

	seen := make(map[string]struct{})
	combined := make([]domain.Ticker, 0)
	for _, res := range results {
		for _, t := range res.Tickers {
			if _, ok := seen[t.Key()]; ok {
				continue
			}
			seen[t.Key()] = struct{}{}
			combined = append(combined, t)
		}
	}

	return &domain.TickerPage{
		Tickers: combined,
		Pagination: domain.TickerPagination{
			Count:        len(combined),
			Page:         page.Page,
			ItemsPerPage: page.ItemsPerPage,
		},
	}, nil
}

func (s *pledgeService) TickerCost(ctx context.Context, ticker string) (*clients.RateResult, error) {
	if strings.TrimSpace(ticker) == "" {
		return nil, domain.Invalid("Ticker symbol is required")
	}
	return s.api.GetTickerCost(ctx, ticker)
}

func (s *pledgeService) CryptoRate(ctx context.Context, currency string) (*clients.RateResult, error) {
	if strings.TrimSpace(currency) == "" {
		return nil, domain.Invalid("Currency code is required")
	}
	return s.api.GetCryptoRate(ctx, currency)
}

func (s *pledgeService) Currencies(ctx context.Context) (json.RawMessage, error) {
	return s.cached(ctx, currenciesCacheKey, s.cacheCfg.CurrencyTTL, func() (json.RawMessage, error) {
		return s.api.ListCurrencies(ctx)
	})
}

func (s *pledgeService) WidgetSnippet(ctx context.Context) (json.RawMessage, error) {
	w := s.org.WidgetSnippet
	return s.api.GetWidgetSnippet(ctx, s.org.ID, domain.WidgetSnippetRequest{
		UIVersion:    w.UIVersion,
		DonationFlow: w.DonationFlow,
		Button: domain.WidgetButton{
			ID:    w.ButtonID,
			Text:  w.ButtonText,
			Style: w.ButtonStyle,
		},
		ScriptID:   w.ScriptID,
		CampaignID: w.CampaignID,
	})
}

// cached serves key from the cache, falling through to fetch on a miss or a
// cache failure.
func (s *pledgeService) cached(ctx context.Context, key string, ttl time.Duration, fetch func() (json.RawMessage, error)) (json.RawMessage, error) {
	if s.cache != nil {
		var hit json.RawMessage
		if err := s.cache.GetJSON(ctx, key, &hit); err == nil && len(hit) > 0 {
			return hit, nil
		} else if err != nil && !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
	}

	fresh, err := fetch()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, fresh, ttl); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
	}
	return fresh, nil
}

func (s *pledgeService) markFailed(ctx context.Context, id uuid.UUID) {
	if err := s.donationRepo.MarkFailed(context.WithoutCancel(ctx), id); err != nil {
		s.logger.Error().Err(err).Str("donation_id", id.String()).Msg("Failed to mark donation as failed")
	}
}

// validatePledge checks a crypto or card pledge and parses its
// organization id and amount.
func validatePledge(req domain.PledgeRequest, badOrgMessage string) (int64, decimal.Decimal, error) {
	var missing []string
	if req.OrganizationID == "" {
		missing = append(missing, "organizationId")
	}
	if req.PledgeCurrency == "" {
		missing = append(missing, "pledgeCurrency")
	}
	if req.PledgeAmount == "" {
		missing = append(missing, "pledgeAmount")
	}
	if req.ProjectSlug == "" {
		missing = append(missing, "projectSlug")
	}
	if !req.IsAnonymous {
		missing = append(missing, req.MissingIdentity()...)
	}
	if err := domain.MissingFields(missing...); err != nil {
		return 0, decimal.Zero, err
	}

	orgID, err := strconv.ParseInt(strings.TrimSpace(req.OrganizationID.String()), 10, 64)
	if err != nil {
		return 0, decimal.Zero, domain.Invalid(badOrgMessage)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.PledgeAmount.String()))
	if err != nil {
		return 0, decimal.Zero, domain.Invalid("Invalid pledgeAmount.")
	}
	if !amount.IsPositive() {
		return 0, decimal.Zero, domain.Invalid("Pledge amount must be greater than zero.")
	}
	return orgID, amount, nil
}

func ledgerRow(req domain.PledgeRequest, orgID int64, amount decimal.Decimal, kind domain.DonationType) *domain.Donation {
	return &domain.Donation{
		ProjectSlug:     req.ProjectSlug,
		OrganizationID:  orgID,
		DonationType:    kind,
		AssetSymbol:     req.PledgeCurrency,
		PledgeAmount:    amount,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		DonorEmail:      req.ReceiptEmail,
		SocialX:         req.SocialX,
		SocialFacebook:  req.SocialFacebook,
		SocialLinkedIn:  req.SocialLinkedIn,
		IsAnonymous:     req.IsAnonymous,
		TaxReceipt:      req.TaxReceipt,
		JoinMailingList: req.JoinMailingList,
	}
}

// validSignature accepts raw base64 or a data:image/...;base64, URL.
func validSignature(sig string) bool {
	if strings.HasPrefix(sig, "data:") {
		comma := strings.Index(sig, ",")
		if comma < 0 || !strings.HasPrefix(sig, "data:image/") || !strings.HasSuffix(sig[:comma], ";base64") {
			return false
		}
		sig = sig[comma+1:]
	}
	if sig == "" {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(sig)
	return err == nil
}
