package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/internal/infrastructure/clients"
	"github.com/fundbridge/donate/pkg/config"
)

var (
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	ErrStepNotReady   = errors.New("current step is not ready to submit")
)

const msgGatewayFailed = "Something went wrong. Please try again."

// Gateway is the part of the pledge service the flow calls between events.
type Gateway interface {
	CreateDepositAddress(ctx context.Context, req domain.PledgeRequest) (*domain.DepositAddress, error)
	CreateFiatPledge(ctx context.Context, req domain.PledgeRequest) (*domain.FiatPledge, error)
	ChargeFiatPledge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error)
	CreateStockPledge(ctx context.Context, req domain.StockPledgeRequest) (*domain.StockPledge, error)
	SubmitStockDonation(ctx context.Context, req domain.BrokerSubmission) (json.RawMessage, error)
	SignStockDonation(ctx context.Context, req domain.SignatureRequest) (*clients.SignResult, error)
	TickerCost(ctx context.Context, ticker string) (*clients.RateResult, error)
	CryptoRate(ctx context.Context, currency string) (*clients.RateResult, error)
	Currencies(ctx context.Context) (json.RawMessage, error)
}

// Notifier is told about every committed state, e.g. to push it over a
// websocket.
type Notifier interface {
	Publish(session string, s State)
}

// Driver runs donation sessions: it serialises events per session, applies
// Reduce, persists the result and performs the gateway calls that some
// transitions need.
type Driver struct {
	gateway  Gateway
	store    Store
	notifier Notifier
	orgID    string
	cfg      config.FlowConfig
	locks    *sessionLocks
	logger   zerolog.Logger
}

func NewDriver(
	gateway Gateway,
	store Store,
	notifier Notifier,
	org config.OrganizationConfig,
	cfg config.FlowConfig,
	logger zerolog.Logger,
) *Driver {
	return &Driver{
		gateway:  gateway,
		store:    store,
		notifier: notifier,
		orgID:    org.ID,
		cfg:      cfg,
		locks:    newSessionLocks(),
		logger:   logger.With().Str("component", "flow").Logger(),
	}
}

// Start opens a new session. Claims, when present, pre-fill the donor's X
// profile. The currency list and the default rate are loaded best effort.
func (d *Driver) Start(ctx context.Context, claims *domain.DonorClaims) (string, State, error) {
	session := uuid.NewString()
	s := InitialWith(d.cfg.DefaultCurrency, d.cfg.DefaultCurrencyName)
	if claims != nil {
		s.FormData.SocialX = claims.Username
		s.FormData.SocialXImageSrc = claims.Picture
	}

	if currencies, err := d.loadCurrencies(ctx); err != nil {
		d.logger.Warn().Err(err).Msg("Unable to load currency list")
	} else {
		s = Reduce(s, CurrencyListLoaded{Currencies: currencies})
	}
	if ev, err := d.fetchRate(ctx, s.SelectedCurrencyCode); err != nil {
		d.logger.Warn().Err(err).Str("currency", s.SelectedCurrencyCode).Msg("Unable to load default rate")
	} else {
		s = Reduce(s, ev)
	}

	if err := d.store.Save(ctx, session, s); err != nil {
		return "", State{}, err
	}
	d.logger.Info().Str("session", session).Msg("Donation session started")
	return session, s, nil
}

func (d *Driver) Get(ctx context.Context, session string) (State, error) {
	return d.store.Load(ctx, session)
}

// Dispatch applies a browser event. Selecting a currency or a stock also
// fetches its price and applies it before returning.
func (d *Driver) Dispatch(ctx context.Context, session string, ev Event) (State, error) {
	s, err := d.apply(ctx, session, ev)
	if err != nil {
		return State{}, err
	}

	var follow Event
	switch e := ev.(type) {
	case CurrencySelected:
		if e.Code != "" {
			follow, err = d.fetchRate(ctx, e.Code)
		}
	case StockSelected:
		if e.Ticker.Ticker != "" {
			follow, err = d.fetchTickerCost(ctx, e.Ticker.Ticker)
		}
	case OptionSelected:
		if e.Option == OptionCrypto {
			if _, ok := s.Rate(); !ok {
				follow, err = d.fetchRate(ctx, s.SelectedCurrencyCode)
			}
		}
	}
	if err != nil {
		d.logger.Warn().Err(err).Str("session", session).Msg("Price lookup failed")
		return d.apply(ctx, session, SubmitFailed{Step: s.CurrentStep, Message: "Unable to load the current price."})
	}
	if follow == nil {
		return s, nil
	}
	return d.apply(ctx, session, follow)
}

// Submit performs the primary action of the current step. Only one
// submission per session may be outstanding.
func (d *Driver) Submit(ctx context.Context, session string) (State, error) {
	unlock := d.locks.lock(session)
	s, err := d.store.Load(ctx, session)
	if err != nil {
		unlock()
		return State{}, err
	}
	if s.Pending {
		unlock()
		return s, ErrSubmitInFlight
	}
	step := s.CurrentStep
	started := Reduce(s, SubmitStarted{Step: step})
	if !started.Pending {
		unlock()
		return s, ErrStepNotReady
	}
	if err := d.commit(ctx, session, started); err != nil {
		unlock()
		return State{}, err
	}
	unlock()

	// The outcome is recorded even if the caller goes away.
	callCtx := context.WithoutCancel(ctx)
	result, err := d.call(callCtx, started)
	if err != nil {
		level := zerolog.WarnLevel
		if _, ok := clients.IsAPIError(err); !ok && !errors.Is(err, domain.ErrValidation) {
			level = zerolog.ErrorLevel
		}
		d.logger.WithLevel(level).Err(err).Str("session", session).Str("step", string(step)).Msg("Submission failed")
		result = SubmitFailed{Step: step, Message: failureMessage(err)}
	}
	return d.apply(callCtx, session, result)
}

// Close discards a session.
func (d *Driver) Close(ctx context.Context, session string) error {
	unlock := d.locks.lock(session)
	defer unlock()
	return d.store.Delete(ctx, session)
}

func (d *Driver) apply(ctx context.Context, session string, ev Event) (State, error) {
	unlock := d.locks.lock(session)
	defer unlock()

	s, err := d.store.Load(ctx, session)
	if err != nil {
		return State{}, err
	}
	next := Reduce(s, ev)
	if _, ok := ev.(Reset); ok {
		// a reset donation is not kept; the donor starts a new session
		if err := d.store.Delete(ctx, session); err != nil {
			return State{}, err
		}
		d.publish(session, next)
		return next, nil
	}
	if err := d.commit(ctx, session, next); err != nil {
		return State{}, err
	}
	return next, nil
}

func (d *Driver) commit(ctx context.Context, session string, s State) error {
	if err := d.store.Save(ctx, session, s); err != nil {
		return err
	}
	d.publish(session, s)
	return nil
}

func (d *Driver) publish(session string, s State) {
	if d.notifier != nil {
		d.notifier.Publish(session, s)
	}
}

// call maps the step a submission started on to its gateway operation.
func (d *Driver) call(ctx context.Context, s State) (Event, error) {
	switch s.CurrentStep {
	case StepPersonalInfo:
		return d.createPledge(ctx, s)
	case StepFiatDonate:
		res, err := d.gateway.ChargeFiatPledge(ctx, domain.ChargeRequest{
			PledgeID:  s.DonationData.PledgeID,
			CardToken: s.FormData.CardToken,
		})
		if err != nil {
			return nil, err
		}
		return ChargeCompleted{Success: res.Success}, nil
	case StepStockBrokerInfo:
		f := s.FormData
		_, err := d.gateway.SubmitStockDonation(ctx, domain.BrokerSubmission{
			DonationUUID:           s.DonationData.DonationUUID,
			BrokerName:             f.BrokerName,
			BrokerageAccountNumber: f.BrokerageAccountNumber,
			BrokerContactName:      f.BrokerContactName,
			BrokerEmail:            f.BrokerEmail,
			BrokerPhone:            f.BrokerPhone,
		})
		if err != nil {
			return nil, err
		}
		return BrokerSubmitted{}, nil
	case StepSign:
		res, err := d.gateway.SignStockDonation(ctx, domain.SignatureRequest{
			DonationUUID: s.DonationData.DonationUUID,
			Date:         s.FormData.SignatureDate,
			Signature:    s.FormData.SignatureImage,
		})
		if err != nil {
			return nil, err
		}
		return SignatureAccepted{IsSuccess: res.IsSuccess}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrStepNotReady, s.CurrentStep)
}

func (d *Driver) createPledge(ctx context.Context, s State) (Event, error) {
	f := s.FormData
	donor := domain.Donor{
		ReceiptEmail:    f.ReceiptEmail,
		FirstName:       f.FirstName,
		LastName:        f.LastName,
		AddressLine1:    f.AddressLine1,
		AddressLine2:    f.AddressLine2,
		Country:         f.Country,
		State:           f.State,
		City:            f.City,
		Zipcode:         f.Zipcode,
		PhoneNumber:     f.PhoneNumber,
		TaxReceipt:      f.TaxReceipt,
		IsAnonymous:     f.IsAnonymous,
		JoinMailingList: f.JoinMailingList,
		SocialFacebook:  f.SocialFacebook,
		SocialLinkedIn:  f.SocialLinkedIn,
	}
	if f.SocialXUseSession {
		donor.SocialX = f.SocialX
	}

	switch s.SelectedOption {
	case OptionStock:
		donor.IsAnonymous = false
		res, err := d.gateway.CreateStockPledge(ctx, domain.StockPledgeRequest{
			OrganizationID:   domain.FlexString(d.orgID),
			ProjectSlug:      s.ProjectSlug,
			AssetSymbol:      f.AssetSymbol,
			AssetDescription: f.AssetName,
			PledgeAmount:     domain.FlexString(f.PledgeAmount),
			Donor:            donor,
		})
		if err != nil {
			return nil, err
		}
		return PledgeCreated{Step: StepPersonalInfo, DonationUUID: res.DonationUUID}, nil
	case OptionFiat:
		res, err := d.gateway.CreateFiatPledge(ctx, d.pledgeRequest(s, "USD", donor))
		if err != nil {
			return nil, err
		}
		return PledgeCreated{Step: StepPersonalInfo, PledgeID: res.PledgeID}, nil
	default:
		res, err := d.gateway.CreateDepositAddress(ctx, d.pledgeRequest(s, s.SelectedCurrencyCode, donor))
		if err != nil {
			return nil, err
		}
		return PledgeCreated{
			Step:           StepPersonalInfo,
			PledgeID:       res.PledgeID,
			DepositAddress: res.DepositAddress,
			QRCode:         res.QRCode,
		}, nil
	}
}

func (d *Driver) pledgeRequest(s State, pledgeCurrency string, donor domain.Donor) domain.PledgeRequest {
	return domain.PledgeRequest{
		OrganizationID: domain.FlexString(d.orgID),
		ProjectSlug:    s.ProjectSlug,
		PledgeCurrency: pledgeCurrency,
		PledgeAmount:   domain.FlexString(s.FormData.PledgeAmount),
		Donor:          donor,
	}
}

func (d *Driver) loadCurrencies(ctx context.Context) ([]domain.Currency, error) {
	raw, err := d.gateway.Currencies(ctx)
	if err != nil {
		return nil, err
	}
	var currencies []domain.Currency
	if err := json.Unmarshal(raw, &currencies); err != nil {
		return nil, fmt.Errorf("decode currencies: %w", err)
	}
	return currencies, nil
}

func (d *Driver) fetchRate(ctx context.Context, code string) (Event, error) {
	res, err := d.gateway.CryptoRate(ctx, code)
	if err != nil {
		return nil, err
	}
	return RateLoaded{Code: strings.ToUpper(code), Rate: res.Rate}, nil
}

func (d *Driver) fetchTickerCost(ctx context.Context, ticker string) (Event, error) {
	res, err := d.gateway.TickerCost(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return TickerCostLoaded{Ticker: ticker, Price: res.Rate}, nil
}

// failureMessage is what the donor sees. Upstream 4xx and local validation
// messages are shown as-is; anything else is generic.
func failureMessage(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	if apiErr, ok := clients.IsAPIError(err); ok && apiErr.ClientError() && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgGatewayFailed
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// sessionLocks hands out one mutex per session and forgets it once no
// caller holds or waits on it.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (l *sessionLocks) lock(session string) func() {
	l.mu.Lock()
	entry, ok := l.locks[session]
	if !ok {
		entry = &sessionLock{}
		l.locks[session] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, session)
		}
		l.mu.Unlock()
	}
}
