package flow

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fundbridge/donate/pkg/currency"
)

const (
	msgInvalidFormat   = "Invalid format. Please enter a valid number."
	msgSubmitDetails   = "Submit your details to continue."
	msgBadGatewayReply = "Invalid response from payment provider."
	msgChargeDeclined  = "Payment was not successful. Please try another card."
	msgSignRejected    = "Signature was not accepted. Please try again."
)

// Reduce applies ev to s and returns the next state. It has no side effects
// and never mutates s.
func Reduce(s State, ev Event) State {
	next := s.clone()

	switch e := ev.(type) {
	case OptionSelected:
		if next.CurrentStep != StepPayment || !e.Option.Valid() || next.Pending {
			return next
		}
		if e.Option != next.SelectedOption {
			clearPledge(&next)
		}
		next.SelectedOption = e.Option
		switch e.Option {
		case OptionStock:
			next.FormData.IsAnonymous = false
		case OptionFiat:
			next.FormData.PledgeCurrency = "USD"
		case OptionCrypto:
			next.FormData.PledgeCurrency = next.SelectedCurrencyCode
		}
		next.Error = ""
		next.IsDonateButtonDisabled = true
		return next

	case CurrencyListLoaded:
		next.CurrencyList = append(next.CurrencyList[:0], e.Currencies...)

	case CurrencySelected:
		if e.Code == "" || !editable(next) {
			return next
		}
		clearPledge(&next)
		next.SelectedCurrencyCode = strings.ToUpper(e.Code)
		next.SelectedCurrencyName = e.Name
		if next.SelectedOption == OptionCrypto {
			next.FormData.PledgeCurrency = next.SelectedCurrencyCode
			next.FormData.AssetSymbol = next.SelectedCurrencyCode
			next.FormData.AssetName = e.Name
		}
		recomputeCryptoFromUSD(&next)

	case RateLoaded:
		code := strings.ToUpper(e.Code)
		if code == "" || !e.Rate.IsPositive() {
			return next
		}
		next.CurrencyRates[code] = e.Rate
		if code == strings.ToUpper(next.SelectedCurrencyCode) {
			recomputeCryptoFromUSD(&next)
		}

	case USDInputChanged:
		if !editable(next) {
			return next
		}
		if !currency.ValidUSDInput(e.Value) {
			next.Error = msgInvalidFormat
			return next
		}
		clearPledge(&next)
		next.Error = ""
		next.USDInput = e.Value
		recomputeCryptoFromUSD(&next)

	case CryptoInputChanged:
		if !editable(next) {
			return next
		}
		if !currency.ValidCryptoInput(e.Value) {
			next.Error = msgInvalidFormat
			return next
		}
		clearPledge(&next)
		next.Error = ""
		next.CryptoInput = e.Value
		next.USDInput = ""
		if rate, ok := next.Rate(); ok {
			next.USDInput = currency.USDFromCryptoString(e.Value, rate)
		}
		if next.SelectedOption == OptionCrypto {
			next.FormData.PledgeAmount = e.Value
		}

	case FiatAmountChanged:
		if !editable(next) {
			return next
		}
		if !currency.ValidFiatInput(e.Value) {
			next.Error = msgInvalidFormat
			return next
		}
		clearPledge(&next)
		next.Error = ""
		next.FormData.PledgeAmount = e.Value
		next.FormData.PledgeCurrency = "USD"
		next.USDInput = e.Value

	case StockSelected:
		if e.Ticker.Ticker == "" || !editable(next) {
			return next
		}
		clearPledge(&next)
		next.FormData.AssetSymbol = e.Ticker.Ticker
		next.FormData.AssetName = e.Ticker.Name
		next.FormData.PledgeAmount = ""
		next.StockPrice = decimal.Zero
		next.USDInput = "0"
		next.Error = ""

	case TickerCostLoaded:
		if !strings.EqualFold(e.Ticker, next.FormData.AssetSymbol) || !e.Price.IsPositive() {
			return next
		}
		next.StockPrice = e.Price
		if next.FormData.PledgeAmount == "" {
			next.FormData.PledgeAmount = strconv.FormatInt(currency.StockMinimumShares(e.Price), 10)
		}
		recomputeStockValue(&next)

	case StockQuantityChanged:
		if !editable(next) {
			return next
		}
		if strings.TrimSpace(e.Value) == "" {
			clearPledge(&next)
			next.FormData.PledgeAmount = ""
			next.USDInput = "0"
			break
		}
		qty, ok := currency.ParseShares(e.Value)
		if !ok || qty < 0 {
			next.Error = msgInvalidFormat
			return next
		}
		clearPledge(&next)
		next.Error = ""
		next.FormData.PledgeAmount = strconv.FormatInt(qty, 10)
		recomputeStockValue(&next)

	case FormChanged:
		next.Error = applyForm(&next.FormData, e)
		if next.SelectedOption == OptionStock {
			next.FormData.IsAnonymous = false
		}

	case ProjectSelected:
		next.ProjectSlug = e.Slug
		next.ProjectTitle = e.Title
		next.Image = e.Image

	case Continue:
		if next.Pending {
			return next
		}
		forward(&next)

	case Back:
		if next.Pending {
			return next
		}
		if prev, ok := previousStep(next.CurrentStep); ok {
			if prev == StepPersonalInfo || prev == StepPayment {
				clearPledge(&next)
			}
			next.CurrentStep = prev
			next.Error = ""
		}

	case SubmitStarted:
		if next.Pending || e.Step != next.CurrentStep || len(Validate(next)) > 0 {
			return next
		}
		next.Pending = true
		next.Error = ""

	case PledgeCreated:
		next.Pending = false
		if e.Step != StepPersonalInfo || next.CurrentStep != StepPersonalInfo {
			break
		}
		setDonationData(&next, e)
		target := railStep(next.SelectedOption)
		if !hasPrerequisite(next, target) {
			next.Error = msgBadGatewayReply
			break
		}
		next.Error = ""
		next.CurrentStep = target

	case ChargeCompleted:
		next.Pending = false
		if next.CurrentStep != StepFiatDonate {
			break
		}
		if !e.Success {
			next.Error = msgChargeDeclined
			break
		}
		next.Error = ""
		next.CurrentStep = StepComplete

	case BrokerSubmitted:
		next.Pending = false
		if next.CurrentStep != StepStockBrokerInfo {
			break
		}
		next.Error = ""
		next.CurrentStep = StepSign

	case SignatureAccepted:
		next.Pending = false
		if next.CurrentStep != StepSign {
			break
		}
		if !e.IsSuccess {
			next.Error = msgSignRejected
			break
		}
		next.Error = ""
		next.CurrentStep = StepThankYou

	case SubmitFailed:
		next.Pending = false
		if e.Step == next.CurrentStep {
			next.Error = e.Message
		}

	case Reset:
		return reset(next)

	default:
		return next
	}

	next.IsDonateButtonDisabled = next.Pending || len(Validate(next)) > 0
	return next
}

// recomputeCryptoFromUSD treats the USD side as the source of truth.
func recomputeCryptoFromUSD(s *State) {
	s.CryptoInput = ""
	if rate, ok := s.Rate(); ok {
		s.CryptoInput = currency.CryptoFromUSDString(s.USDInput, rate)
	}
	if s.SelectedOption == OptionCrypto {
		s.FormData.PledgeAmount = s.CryptoInput
	}
}

func recomputeStockValue(s *State) {
	qty, ok := currency.ParseShares(s.FormData.PledgeAmount)
	if !ok {
		s.USDInput = "0"
		return
	}
	s.USDInput = currency.StockValue(qty, s.StockPrice).StringFixed(currency.USDDecimals)
}

func forward(s *State) {
	switch s.CurrentStep {
	case StepPayment:
		if errs := Validate(*s); len(errs) > 0 {
			s.Error = errs[0].Message
			return
		}
		s.Error = ""
		s.CurrentStep = StepPersonalInfo
	case StepPersonalInfo:
		// The rail step is only entered through PledgeCreated.
		if errs := Validate(*s); len(errs) > 0 {
			s.Error = errs[0].Message
			return
		}
		s.Error = msgSubmitDetails
	}
}

func railStep(o Option) Step {
	switch o {
	case OptionFiat:
		return StepFiatDonate
	case OptionStock:
		return StepStockBrokerInfo
	}
	return StepCryptoDonate
}

// hasPrerequisite reports whether the identifiers step depends on exist.
func hasPrerequisite(s State, step Step) bool {
	switch step {
	case StepCryptoDonate:
		return s.DonationData.DepositAddress != "" && s.DonationData.PledgeID != ""
	case StepFiatDonate, StepComplete:
		return s.DonationData.PledgeID != ""
	case StepStockBrokerInfo, StepSign, StepThankYou:
		return s.DonationData.DonationUUID != ""
	}
	return true
}

func previousStep(step Step) (Step, bool) {
	switch step {
	case StepPersonalInfo:
		return StepPayment, true
	case StepCryptoDonate, StepFiatDonate, StepStockBrokerInfo:
		return StepPersonalInfo, true
	case StepSign:
		return StepStockBrokerInfo, true
	}
	return step, false
}

// setDonationData replaces the gateway identifiers with those of e.
func setDonationData(s *State, e PledgeCreated) {
	clearPledge(s)
	s.DonationData = DonationData{
		PledgeID:       e.PledgeID,
		DepositAddress: e.DepositAddress,
		QRCode:         e.QRCode,
		DonationUUID:   e.DonationUUID,
	}
	s.FormData.PledgeID = e.PledgeID
	s.FormData.DonationUUID = e.DonationUUID
}

// clearPledge drops identifiers of a pledge that no longer matches the
// donor's rail or amount.
func clearPledge(s *State) {
	s.DonationData = DonationData{}
	s.FormData.PledgeID = ""
	s.FormData.DonationUUID = ""
}

// editable reports whether the amount and asset may still change. They are
// fixed once the donor leaves the payment step.
func editable(s State) bool {
	return s.CurrentStep == StepPayment && !s.Pending
}

// reset clears the donation but keeps session data that is costly to fetch
// again: the currency list, known rates, the chosen currency and the project.
func reset(s State) State {
	r := Initial()
	r.CurrencyList = s.CurrencyList
	r.CurrencyRates = s.CurrencyRates
	r.SelectedCurrencyCode = s.SelectedCurrencyCode
	r.SelectedCurrencyName = s.SelectedCurrencyName
	r.FormData.PledgeCurrency = s.SelectedCurrencyCode
	r.ProjectSlug = s.ProjectSlug
	r.ProjectTitle = s.ProjectTitle
	r.Image = s.Image
	return r
}
