package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"londonsimports.org/imports-web/internal/api"
)

func TestDueAmountFull(t *testing.T) {
	due, err := PaymentIntent{Type: PayFull}.DueAmount(d("1000.00"), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, due.Equal(d("1000.00")))
}

func TestDueAmountDeposit(t *testing.T) {
	due, err := PaymentIntent{Type: PayDeposit}.DueAmount(d("1000.00"), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, due.Equal(d("300.00")), "deposit is 30%% of the total, got %s", due)

	// rounding to 2dp on an awkward total
	due, err = PaymentIntent{Type: PayDeposit}.DueAmount(d("99.99"), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "30.00", due.StringFixed(2))
}

func TestDueAmountCustomBounds(t *testing.T) {
	total := d("250.00")

	_, err := PaymentIntent{Type: PayCustom, CustomAmount: d("0.99")}.DueAmount(total, decimal.Zero)
	var ie *IntentError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "custom_amount", ie.Field)
	assert.Equal(t, "Minimum payment amount is GHS 1.00.", ie.Message)

	_, err = PaymentIntent{Type: PayCustom, CustomAmount: d("250.01")}.DueAmount(total, decimal.Zero)
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "Payment amount cannot exceed the order total of GHS 250.00.", ie.Message)

	due, err := PaymentIntent{Type: PayCustom, CustomAmount: d("1.00")}.DueAmount(total, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, due.Equal(d("1.00")))

	due, err = PaymentIntent{Type: PayCustom, CustomAmount: total}.DueAmount(total, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, due.Equal(total))
}

func TestDueAmountBalance(t *testing.T) {
	due, err := PaymentIntent{Type: PayBalance}.DueAmount(d("1000.00"), d("300.00"))
	require.NoError(t, err)
	assert.True(t, due.Equal(d("700.00")))

	var ie *IntentError
	_, err = PaymentIntent{Type: PayBalance}.DueAmount(d("1000.00"), decimal.Zero)
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "payment_type", ie.Field)

	// fully paid leaves nothing to balance
	_, err = PaymentIntent{Type: PayBalance}.DueAmount(d("1000.00"), d("1000.00"))
	require.Error(t, err)
}

func TestDueAmountZeroTotal(t *testing.T) {
	_, err := PaymentIntent{Type: PayFull}.DueAmount(decimal.Zero, decimal.Zero)
	require.Error(t, err)
}

func TestDueForOrderPrefersBackendFigures(t *testing.T) {
	order := &api.Order{
		Total:         d("1000.00"),
		DepositAmount: d("305.50"),
	}
	due, err := PaymentIntent{Type: PayDeposit}.DueForOrder(order)
	require.NoError(t, err)
	assert.True(t, due.Equal(d("305.50")), "backend deposit figure wins over the local 30%% estimate")

	order = &api.Order{
		Total:      d("1000.00"),
		AmountPaid: d("400.00"),
		BalanceDue: d("600.00"),
	}
	due, err = PaymentIntent{Type: PayBalance}.DueForOrder(order)
	require.NoError(t, err)
	assert.True(t, due.Equal(d("600.00")))
}

func TestParsePaymentType(t *testing.T) {
	for _, s := range []string{"FULL", "DEPOSIT", "CUSTOM", "BALANCE"} {
		pt, err := ParsePaymentType(s)
		require.NoError(t, err)
		assert.Equal(t, PaymentType(s), pt)
	}

	pt, err := ParsePaymentType("")
	require.NoError(t, err)
	assert.Equal(t, PayFull, pt)

	_, err = ParsePaymentType("INSTALLMENT")
	assert.Error(t, err)
}

func TestBalanceSelectable(t *testing.T) {
	partial := &api.Order{AmountPaid: d("300"), BalanceDue: d("700")}
	assert.True(t, BalanceSelectable(partial, true))
	assert.False(t, BalanceSelectable(partial, false), "fresh checkouts never offer balance")
	assert.False(t, BalanceSelectable(&api.Order{BalanceDue: d("700")}, true))
	assert.False(t, BalanceSelectable(nil, true))
}
