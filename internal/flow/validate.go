package flow

import (
	"regexp"

	"github.com/fundbridge/donate/pkg/currency"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// FieldError is one failed requirement of the current step.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate lists what blocks the current step from moving forward. An empty
// result means the step's primary action is allowed.
func Validate(s State) []FieldError {
	switch s.CurrentStep {
	case StepPayment:
		return validatePayment(s)
	case StepPersonalInfo:
		return validatePersonalInfo(s)
	case StepFiatDonate:
		return validateCard(s)
	case StepStockBrokerInfo:
		return validateBroker(s)
	case StepSign:
		return validateSignature(s)
	}
	return nil
}

func validatePayment(s State) []FieldError {
	switch s.SelectedOption {
	case OptionCrypto:
		rate, ok := s.Rate()
		if !ok {
			return []FieldError{{"rate", "Exchange rate unavailable."}}
		}
		qty, ok := currency.Parse(s.CryptoInput)
		if !ok || !qty.IsPositive() {
			return []FieldError{{"cryptoInput", "Enter an amount."}}
		}
		if currency.BelowCryptoMinimum(s.CryptoInput, rate) {
			return []FieldError{{"cryptoInput", "Minimum donation is " + currency.FormatCrypto(currency.CryptoMinimum(rate)) + " " + s.SelectedCurrencyCode + "."}}
		}
		if currency.BelowUSDMinimum(s.USDInput, currency.GeneralFiatMinimumUSD) {
			return []FieldError{{"usdInput", "Minimum donation is " + currency.FormatUSD(currency.GeneralFiatMinimumUSD) + "."}}
		}
	case OptionFiat:
		amount, ok := currency.Parse(s.FormData.PledgeAmount)
		if !ok || !amount.IsPositive() {
			return []FieldError{{"pledgeAmount", "Enter an amount."}}
		}
		if amount.LessThan(currency.FiatMinimumUSD) {
			return []FieldError{{"pledgeAmount", "Minimum donation is " + currency.FormatUSD(currency.FiatMinimumUSD) + "."}}
		}
	case OptionStock:
		if s.FormData.AssetSymbol == "" {
			return []FieldError{{"assetSymbol", "Select a stock."}}
		}
		if !s.StockPrice.IsPositive() {
			return []FieldError{{"stockPrice", "Share price unavailable."}}
		}
		qty, ok := currency.ParseShares(s.FormData.PledgeAmount)
		if !ok || qty <= 0 {
			return []FieldError{{"pledgeAmount", "Enter a whole number of shares."}}
		}
		if !currency.MeetsStockMinimum(qty, s.StockPrice) {
			return []FieldError{{"pledgeAmount", "Minimum donation is " + currency.FormatUSD(currency.StockMinimumUSD) + "."}}
		}
	default:
		return []FieldError{{"selectedOption", "Choose a payment method."}}
	}
	return nil
}

func validatePersonalInfo(s State) []FieldError {
	f := s.FormData
	stock := s.SelectedOption == OptionStock
	anonymous := f.IsAnonymous && !stock

	var errs []FieldError
	require := func(field, value, message string) {
		if value == "" {
			errs = append(errs, FieldError{field, message})
		}
	}

	emailRequired := !anonymous || f.TaxReceipt || f.JoinMailingList
	if emailRequired {
		require("receiptEmail", f.ReceiptEmail, "Email is required.")
	}
	if f.ReceiptEmail != "" && !emailPattern.MatchString(f.ReceiptEmail) {
		errs = append(errs, FieldError{"receiptEmail", "Enter a valid email address."})
	}

	if !anonymous {
		require("firstName", f.FirstName, "First name is required.")
		require("lastName", f.LastName, "Last name is required.")
		require("addressLine1", f.AddressLine1, "Address is required.")
		require("country", f.Country, "Country is required.")
		require("state", f.State, "State is required.")
		require("city", f.City, "City is required.")
		require("zipcode", f.Zipcode, "Zip code is required.")
	}
	if stock {
		require("phoneNumber", f.PhoneNumber, "Phone number is required.")
	}
	return errs
}

func validateCard(s State) []FieldError {
	if s.DonationData.PledgeID == "" {
		return []FieldError{{"pledgeId", "Pledge not created."}}
	}
	if s.FormData.CardToken == "" {
		return []FieldError{{"cardToken", "Card details are required."}}
	}
	return nil
}

func validateBroker(s State) []FieldError {
	f := s.FormData
	var errs []FieldError
	if s.DonationData.DonationUUID == "" {
		errs = append(errs, FieldError{"donationUuid", "Pledge not created."})
	}
	if f.BrokerName == "" {
		errs = append(errs, FieldError{"brokerName", "Broker is required."})
	}
	if f.BrokerageAccountNumber == "" {
		errs = append(errs, FieldError{"brokerageAccountNumber", "Account number is required."})
	}
	if f.BrokerEmail != "" && !emailPattern.MatchString(f.BrokerEmail) {
		errs = append(errs, FieldError{"brokerEmail", "Enter a valid email address."})
	}
	return errs
}

func validateSignature(s State) []FieldError {
	var errs []FieldError
	if s.DonationData.DonationUUID == "" {
		errs = append(errs, FieldError{"donationUuid", "Pledge not created."})
	}
	if s.FormData.SignatureDate == "" {
		errs = append(errs, FieldError{"signatureDate", "Date is required."})
	}
	if s.FormData.SignatureImage == "" {
		errs = append(errs, FieldError{"signatureImage", "Signature is required."})
	}
	return errs
}
