// Package money holds the GHS amount arithmetic shared by the cart, checkout,
// and payment flows. Amounts arrive from the backend as JSON strings or numbers;
// decimal.Decimal accepts both, so backend payload types embed it directly.
package money

import (
	"github.com/shopspring/decimal"
)

// DepositRate is the fixed partial-payment fraction offered at checkout.
var DepositRate = decimal.RequireFromString("0.30")

// MinimumCustomAmount is the floor for a custom partial payment, in GHS.
var MinimumCustomAmount = decimal.RequireFromString("1.00")

var hundred = decimal.NewFromInt(100)

// Pesewas converts a GHS amount to the gateway's minor-unit integer.
// Fractional pesewas round up so a customer is never undercharged.
func Pesewas(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Ceil().IntPart()
}

// Deposit returns the deposit due on a total, rounded to whole pesewas.
func Deposit(total decimal.Decimal) decimal.Decimal {
	return total.Mul(DepositRate).Round(2)
}

// Parse reads a decimal GHS amount from user input.
func Parse(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
