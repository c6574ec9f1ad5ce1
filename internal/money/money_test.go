package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ghs(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestPesewasRoundsUp(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"1000", 100000},
		{"300.00", 30000},
		{"0.01", 1},
		{"12.345", 1235},  // fractional pesewa rounds up
		{"12.3401", 1235}, // even a tiny fraction rounds up
		{"12.34", 1234},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Pesewas(ghs(t, tc.in)), "amount %s", tc.in)
	}
}

func TestDeposit(t *testing.T) {
	// GHS 1000 total -> GHS 300 deposit -> 30000 pesewas.
	dep := Deposit(ghs(t, "1000"))
	assert.True(t, ghs(t, "300.00").Equal(dep), "got %s", dep)
	assert.Equal(t, int64(30000), Pesewas(dep))

	// Rounds to whole pesewas.
	assert.True(t, ghs(t, "0.30").Equal(Deposit(ghs(t, "0.999"))))
}

func TestParse(t *testing.T) {
	got, err := Parse("42.50")
	require.NoError(t, err)
	assert.True(t, ghs(t, "42.50").Equal(got))

	_, err = Parse("not-a-number")
	assert.Error(t, err)
}
