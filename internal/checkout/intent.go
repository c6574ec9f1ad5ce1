package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"londonsimports.org/imports-web/internal/api"
	"londonsimports.org/imports-web/internal/money"
)

// PaymentType selects how much of the order is paid in this attempt.
type PaymentType string

const (
	PayFull    PaymentType = "FULL"
	PayDeposit PaymentType = "DEPOSIT"
	PayCustom  PaymentType = "CUSTOM"
	PayBalance PaymentType = "BALANCE"
)

// ParsePaymentType validates a submitted payment type.
func ParsePaymentType(s string) (PaymentType, error) {
	switch PaymentType(s) {
	case PayFull, PayDeposit, PayCustom, PayBalance:
		return PaymentType(s), nil
	case "":
		return PayFull, nil
	default:
		return "", fmt.Errorf("unknown payment type %q", s)
	}
}

// PaymentIntent is the client-local payment selection. CustomAmount is only
// meaningful when Type is PayCustom.
type PaymentIntent struct {
	Type         PaymentType
	CustomAmount decimal.Decimal
}

// IntentError is a field-specific validation failure shown inline at the form.
type IntentError struct {
	Field   string
	Message string
}

func (e *IntentError) Error() string { return e.Message }

func ghs(d decimal.Decimal) string {
	return "GHS " + d.StringFixed(2)
}

// BalanceSelectable reports whether the BALANCE option may be offered: only a
// resumed order with partial prior payment has a balance to settle.
func BalanceSelectable(order *api.Order, resumed bool) bool {
	return resumed && order.PartiallyPaid()
}

// DueAmount resolves the amount payable now for the intent against a total.
// amountPaid is zero unless an order was resumed with prior payments.
// The result always satisfies 0 < due <= total.
func (p PaymentIntent) DueAmount(total, amountPaid decimal.Decimal) (decimal.Decimal, error) {
	if total.Sign() <= 0 {
		return decimal.Zero, &IntentError{Field: "payment_type", Message: "Nothing to pay on this order."}
	}
	var due decimal.Decimal
	switch p.Type {
	case PayFull:
		due = total
	case PayDeposit:
		due = money.Deposit(total)
	case PayBalance:
		due = total.Sub(amountPaid)
		if amountPaid.Sign() <= 0 || due.Sign() <= 0 {
			return decimal.Zero, &IntentError{
				Field:   "payment_type",
				Message: "Balance payment is only available on a partially paid order.",
			}
		}
	case PayCustom:
		due = p.CustomAmount
		if due.Cmp(money.MinimumCustomAmount) < 0 {
			return decimal.Zero, &IntentError{
				Field:   "custom_amount",
				Message: fmt.Sprintf("Minimum payment amount is %s.", ghs(money.MinimumCustomAmount)),
			}
		}
		if due.Cmp(total) > 0 {
			return decimal.Zero, &IntentError{
				Field:   "custom_amount",
				Message: fmt.Sprintf("Payment amount cannot exceed the order total of %s.", ghs(total)),
			}
		}
	default:
		return decimal.Zero, &IntentError{Field: "payment_type", Message: "Select a payment option."}
	}
	if due.Sign() <= 0 || due.Cmp(total) > 0 {
		return decimal.Zero, &IntentError{Field: "payment_type", Message: "Payment amount is out of range."}
	}
	return due, nil
}

// DueForOrder resolves the amount payable for a finalized order, preferring
// the backend's own deposit and balance figures when it recorded them.
func (p PaymentIntent) DueForOrder(order *api.Order) (decimal.Decimal, error) {
	switch p.Type {
	case PayDeposit:
		if order.DepositAmount.Sign() > 0 {
			return order.DepositAmount, nil
		}
	case PayBalance:
		if order.BalanceDue.Sign() > 0 && order.AmountPaid.Sign() > 0 {
			return order.BalanceDue, nil
		}
	}
	return p.DueAmount(order.Total, order.AmountPaid)
}
