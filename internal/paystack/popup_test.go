package paystack

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConvertsToPesewas(t *testing.T) {
	b := Builder{PublicKey: "pk_test_x", Currency: "GHS"}
	due := decimal.RequireFromString("300.00")

	setup := b.Build("LI-1001-ref", "LI-1001", due, Payer{Email: "ama@example.com", Name: "Ama Mensah", Phone: "+233201234567"})

	assert.Equal(t, int64(30000), setup.Amount)
	assert.Equal(t, "GHS", setup.Currency)
	assert.Equal(t, "LI-1001-ref", setup.Ref)
	assert.Equal(t, "ama@example.com", setup.Email)

	require.Len(t, setup.Metadata.CustomFields, 3)
	assert.Equal(t, "order_number", setup.Metadata.CustomFields[0].VariableName)
	assert.Equal(t, "LI-1001", setup.Metadata.CustomFields[0].Value)
	assert.Equal(t, "customer_name", setup.Metadata.CustomFields[1].VariableName)
	assert.Equal(t, "Ama Mensah", setup.Metadata.CustomFields[1].Value)
	assert.Equal(t, "phone", setup.Metadata.CustomFields[2].VariableName)
}

func TestBuildRoundsFractionalPesewasUp(t *testing.T) {
	b := Builder{PublicKey: "pk_test_x"}
	setup := b.Build("r", "LI-1", decimal.RequireFromString("12.345"), Payer{})
	assert.Equal(t, int64(1235), setup.Amount)
}

func TestBuildFallsBackToPlaceholderEmail(t *testing.T) {
	b := Builder{PublicKey: "pk_test_x"}
	setup := b.Build("r", "LI-1", decimal.RequireFromString("10"), Payer{})
	assert.Equal(t, PlaceholderEmail, setup.Email)
	assert.Equal(t, "GHS", setup.Currency)
	require.Len(t, setup.Metadata.CustomFields, 1)
}
