package clients

// CreateClientRequest is the JSON body for creating or replacing a client.
type CreateClientRequest struct {
	Name            string  `json:"name" validate:"required,max=160"`
	Company         *string `json:"company,omitempty" validate:"omitempty,max=160"`
	Email           string  `json:"email" validate:"required,email"`
	Phone           *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	BillingAddress  *string `json:"billing_address,omitempty"`
	ShippingAddress *string `json:"shipping_address,omitempty"`
	TaxNumber       *string `json:"tax_number,omitempty" validate:"omitempty,max=60"`
	IsActive        *bool   `json:"is_active,omitempty"`
}
