package checkout

import (
	"strings"

	"londonsimports.org/imports-web/internal/api"
)

// Regions enumerates the administrative regions accepted for delivery.
var Regions = []string{
	"Greater Accra",
	"Ashanti",
	"Western",
	"Central",
	"Eastern",
	"Northern",
	"Volta",
	"Upper East",
	"Upper West",
	"Bono",
}

// ValidRegion reports whether region is on the accepted list.
func ValidRegion(region string) bool {
	for _, r := range Regions {
		if r == region {
			return true
		}
	}
	return false
}

// DeliveryDetails is the ephemeral delivery draft collected at checkout.
type DeliveryDetails struct {
	Address string
	City    string
	Region  string
	Notes   string
}

// Validate checks the draft, returning a field-specific error for the first
// violation found.
func (d DeliveryDetails) Validate() *IntentError {
	if strings.TrimSpace(d.Address) == "" {
		return &IntentError{Field: "address", Message: "Delivery address is required."}
	}
	if strings.TrimSpace(d.City) == "" {
		return &IntentError{Field: "city", Message: "City is required."}
	}
	region := strings.TrimSpace(d.Region)
	if region == "" {
		return &IntentError{Field: "region", Message: "Select a delivery region."}
	}
	if !ValidRegion(region) {
		return &IntentError{Field: "region", Message: "Select a region from the list."}
	}
	return nil
}

// PrefillFromOrder copies a resumed order's stored delivery fields into empty
// draft fields. Fields the user already edited are left alone.
func (d *DeliveryDetails) PrefillFromOrder(order *api.Order) {
	if order == nil {
		return
	}
	d.prefill(order.DeliveryAddress, order.DeliveryCity, order.DeliveryRegion, order.CustomerNotes)
}

// PrefillFromProfile copies the user's saved address into empty draft fields.
func (d *DeliveryDetails) PrefillFromProfile(user *api.User) {
	if user == nil {
		return
	}
	d.prefill(user.Address, user.City, user.Region, "")
}

func (d *DeliveryDetails) prefill(address, city, region, notes string) {
	if d.Address == "" {
		d.Address = address
	}
	if d.City == "" {
		d.City = city
	}
	if d.Region == "" {
		d.Region = region
	}
	if d.Notes == "" {
		d.Notes = notes
	}
}
