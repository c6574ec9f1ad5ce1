package api

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order lifecycle states owned by the backend. Only the states this client
// branches on are enumerated; anything else is passed through for display.
const (
	OrderStateDraft          = "DRAFT"
	OrderStatePendingPayment = "PENDING_PAYMENT"
	OrderStatePaid           = "PAID"
)

// Cart is the pre-checkout snapshot for the authenticated user.
type Cart struct {
	ID          string          `json:"id"`
	Items       []OrderItem     `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

// Empty reports whether the cart has no line items.
func (c *Cart) Empty() bool {
	return c == nil || len(c.Items) == 0
}

// OrderItem is a single cart or order line.
type OrderItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// Order is the backend-owned record created from a cart at checkout.
type Order struct {
	ID           string `json:"id"`
	OrderNumber  string `json:"order_number"`
	State        string `json:"state"`
	StateDisplay string `json:"state_display,omitempty"`

	Items []OrderItem `json:"items,omitempty"`

	Subtotal      decimal.Decimal `json:"subtotal"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
	Total         decimal.Decimal `json:"total"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	BalanceDue    decimal.Decimal `json:"balance_due"`

	DeliveryAddress string `json:"delivery_address,omitempty"`
	DeliveryCity    string `json:"delivery_city,omitempty"`
	DeliveryRegion  string `json:"delivery_region,omitempty"`
	CustomerNotes   string `json:"customer_notes,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}

// AwaitingPayment reports whether the order can still be paid.
func (o *Order) AwaitingPayment() bool {
	return o != nil && o.State == OrderStatePendingPayment
}

// PartiallyPaid reports whether a balance payment is selectable for the order.
func (o *Order) PartiallyPaid() bool {
	return o != nil && o.AmountPaid.Sign() > 0 && o.BalanceDue.Sign() > 0
}

// CheckoutRequest finalizes the cart into an order.
type CheckoutRequest struct {
	DeliveryAddress string `json:"delivery_address"`
	DeliveryCity    string `json:"delivery_city"`
	DeliveryRegion  string `json:"delivery_region"`
	CustomerNotes   string `json:"customer_notes,omitempty"`
	PaymentType     string `json:"payment_type"`
	CustomAmount    string `json:"custom_amount,omitempty"`
}

// PaymentSession is the backend-issued reference for one payment attempt.
type PaymentSession struct {
	Reference        string `json:"reference"`
	AccessCode       string `json:"access_code,omitempty"`
	AuthorizationURL string `json:"authorization_url,omitempty"`
}

// VerifyResult reports the backend's server-side confirmation of a payment.
type VerifyResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	OrderNumber string `json:"order_number,omitempty"`
}

// User mirrors the profile fields the checkout flow prefills from.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	Region    string `json:"region,omitempty"`
	Role      string `json:"role,omitempty"`
}

// FullName joins first and last names, falling back to the email.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.Email
	}
	return name
}

// Product is a catalog entry. Only list/detail fields the pages render.
type Product struct {
	ID          string          `json:"id"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	Category    string          `json:"category,omitempty"`
	VendorName  string          `json:"vendor_name,omitempty"`
	InStock     bool            `json:"in_stock,omitempty"`
}

// LoginRequest authenticates a user against the backend.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued tokens plus the authenticated profile.
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
	User    *User  `json:"user,omitempty"`
}
