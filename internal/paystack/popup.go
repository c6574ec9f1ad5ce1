// Package paystack models the inline payment popup contract: the setup
// configuration handed to the gateway script, and the two asynchronous exits
// (success callback, user close) it reports back. The script itself runs in
// the browser; this package only prepares its inputs and names its outputs.
package paystack

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"londonsimports.org/imports-web/internal/money"
)

// DefaultScriptURL is the gateway's hosted inline script.
const DefaultScriptURL = "https://js.paystack.co/v1/inline.js"

// PlaceholderEmail is used when the payer has no email on file; the gateway
// requires one for every transaction.
const PlaceholderEmail = "customer@londonsimports.com"

// ErrScriptNotReady is returned when a popup open is attempted before the
// inline script has loaded. Not retryable without a page refresh.
var ErrScriptNotReady = errors.New("paystack: payment script not loaded")

// CustomField is the gateway's support-traceability metadata entry.
type CustomField struct {
	DisplayName  string `json:"display_name"`
	VariableName string `json:"variable_name"`
	Value        string `json:"value"`
}

// Metadata wraps the custom fields shown to support staff.
type Metadata struct {
	CustomFields []CustomField `json:"custom_fields"`
}

// Setup is the configuration object for PaystackPop.setup(). Amount is the
// due amount in minor units (pesewas), rounded up from the GHS figure.
type Setup struct {
	Key      string   `json:"key"`
	Email    string   `json:"email"`
	Amount   int64    `json:"amount"`
	Currency string   `json:"currency"`
	Ref      string   `json:"ref"`
	Metadata Metadata `json:"metadata"`
}

// Payer identifies who is paying, for the gateway and for support metadata.
type Payer struct {
	Email string
	Name  string
	Phone string
}

// Builder prepares popup setups with the site's public key and currency.
type Builder struct {
	PublicKey string
	Currency  string
}

// Build assembles the setup for one payment attempt.
func (b Builder) Build(reference, orderNumber string, due decimal.Decimal, payer Payer) Setup {
	email := strings.TrimSpace(payer.Email)
	if email == "" {
		email = PlaceholderEmail
	}
	currency := b.Currency
	if currency == "" {
		currency = "GHS"
	}
	fields := []CustomField{
		{DisplayName: "Order Number", VariableName: "order_number", Value: orderNumber},
	}
	if name := strings.TrimSpace(payer.Name); name != "" {
		fields = append(fields, CustomField{DisplayName: "Customer Name", VariableName: "customer_name", Value: name})
	}
	if phone := strings.TrimSpace(payer.Phone); phone != "" {
		fields = append(fields, CustomField{DisplayName: "Phone", VariableName: "phone", Value: phone})
	}
	return Setup{
		Key:      b.PublicKey,
		Email:    email,
		Amount:   money.Pesewas(due),
		Currency: currency,
		Ref:      reference,
		Metadata: Metadata{CustomFields: fields},
	}
}

// CallbackResponse is the payload the gateway passes to the success callback.
type CallbackResponse struct {
	Reference   string `json:"reference"`
	Status      string `json:"status"`
	Message     string `json:"message"`
	Transaction string `json:"transaction"`
	TrxRef      string `json:"trxref"`
}
