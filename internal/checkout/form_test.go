package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"londonsimports.org/imports-web/internal/api"
)

func TestDeliveryValidate(t *testing.T) {
	valid := DeliveryDetails{Address: "12 Oxford St", City: "Accra", Region: "Greater Accra"}
	assert.Nil(t, valid.Validate())

	tests := []struct {
		name  string
		mut   func(*DeliveryDetails)
		field string
	}{
		{"missing address", func(d *DeliveryDetails) { d.Address = "  " }, "address"},
		{"missing city", func(d *DeliveryDetails) { d.City = "" }, "city"},
		{"missing region", func(d *DeliveryDetails) { d.Region = "" }, "region"},
		{"unknown region", func(d *DeliveryDetails) { d.Region = "Atlantis" }, "region"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dd := valid
			tc.mut(&dd)
			err := dd.Validate()
			require.NotNil(t, err)
			assert.Equal(t, tc.field, err.Field)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestValidRegion(t *testing.T) {
	assert.True(t, ValidRegion("Ashanti"))
	assert.True(t, ValidRegion("Upper West"))
	assert.False(t, ValidRegion("ashanti"), "region matching is exact")
	assert.False(t, ValidRegion(""))
}

func TestPrefillOnlyFillsEmptyFields(t *testing.T) {
	dd := DeliveryDetails{City: "Tema"}
	dd.PrefillFromProfile(&api.User{Address: "5 Ring Rd", City: "Accra", Region: "Greater Accra"})

	assert.Equal(t, "Tema", dd.City, "user edits survive prefill")
	assert.Equal(t, "5 Ring Rd", dd.Address)
	assert.Equal(t, "Greater Accra", dd.Region)
}

func TestPrefillFromOrderIncludesNotes(t *testing.T) {
	dd := DeliveryDetails{}
	dd.PrefillFromOrder(&api.Order{
		DeliveryAddress: "12 Oxford St",
		DeliveryCity:    "Accra",
		DeliveryRegion:  "Greater Accra",
		CustomerNotes:   "Call on arrival",
	})
	assert.Equal(t, "Call on arrival", dd.Notes)

	dd.PrefillFromOrder(nil)
	assert.Equal(t, "12 Oxford St", dd.Address)
}
