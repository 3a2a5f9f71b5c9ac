package flow

import (
	"sort"
	"strings"
)

var textFields = map[string]func(*FormData) *string{
	"firstName":              func(f *FormData) *string { return &f.FirstName },
	"lastName":               func(f *FormData) *string { return &f.LastName },
	"receiptEmail":           func(f *FormData) *string { return &f.ReceiptEmail },
	"addressLine1":           func(f *FormData) *string { return &f.AddressLine1 },
	"addressLine2":           func(f *FormData) *string { return &f.AddressLine2 },
	"country":                func(f *FormData) *string { return &f.Country },
	"state":                  func(f *FormData) *string { return &f.State },
	"city":                   func(f *FormData) *string { return &f.City },
	"zipcode":                func(f *FormData) *string { return &f.Zipcode },
	"phoneNumber":            func(f *FormData) *string { return &f.PhoneNumber },
	"cardToken":              func(f *FormData) *string { return &f.CardToken },
	"brokerName":             func(f *FormData) *string { return &f.BrokerName },
	"brokerLabelName":        func(f *FormData) *string { return &f.BrokerLabelName },
	"brokerageAccountNumber": func(f *FormData) *string { return &f.BrokerageAccountNumber },
	"brokerContactName":      func(f *FormData) *string { return &f.BrokerContactName },
	"brokerEmail":            func(f *FormData) *string { return &f.BrokerEmail },
	"brokerPhone":            func(f *FormData) *string { return &f.BrokerPhone },
	"signatureDate":          func(f *FormData) *string { return &f.SignatureDate },
	"signatureImage":         func(f *FormData) *string { return &f.SignatureImage },
	"socialX":                func(f *FormData) *string { return &f.SocialX },
	"socialXimageSrc":        func(f *FormData) *string { return &f.SocialXImageSrc },
	"socialFacebook":         func(f *FormData) *string { return &f.SocialFacebook },
	"socialLinkedIn":         func(f *FormData) *string { return &f.SocialLinkedIn },
}

var flagFields = map[string]func(*FormData) *bool{
	"isAnonymous":       func(f *FormData) *bool { return &f.IsAnonymous },
	"taxReceipt":        func(f *FormData) *bool { return &f.TaxReceipt },
	"joinMailingList":   func(f *FormData) *bool { return &f.JoinMailingList },
	"socialXUseSession": func(f *FormData) *bool { return &f.SocialXUseSession },
}

// applyForm writes the known fields of e into f and reports unknown ones.
// Amounts, assets and gateway identifiers have their own events and are not
// writable here.
func applyForm(f *FormData, e FormChanged) string {
	var unknown []string
	for name, value := range e.Fields {
		field, ok := textFields[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		*field(f) = value
	}
	for name, value := range e.Flags {
		field, ok := flagFields[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		*field(f) = value
	}
	if len(unknown) == 0 {
		return ""
	}
	sort.Strings(unknown)
	return "Unknown fields: " + strings.Join(unknown, ", ")
}
