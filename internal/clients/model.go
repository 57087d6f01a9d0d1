package clients

import "time"

// Client is a customer quotations are addressed to.
type Client struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Company         *string   `json:"company,omitempty"`
	Email           string    `json:"email"`
	Phone           *string   `json:"phone,omitempty"`
	BillingAddress  *string   `json:"billing_address,omitempty"`
	ShippingAddress *string   `json:"shipping_address,omitempty"`
	TaxNumber       *string   `json:"tax_number,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
