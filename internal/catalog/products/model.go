package products

import "time"

// Product is a catalog entry that can be quoted as a line item.
type Product struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CategoryID  int64     `json:"category_id"`
	UnitID      int64     `json:"unit_id"`
	Rate        float64   `json:"rate"`
	Cost        float64   `json:"cost"`
	ImageURL    *string   `json:"image_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductWithDetails carries joined names for list views.
type ProductWithDetails struct {
	Product
	CategoryName string `json:"category_name"`
	UnitCode     string `json:"unit_code"`
}
