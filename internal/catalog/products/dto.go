package products

// CreateProductRequest is the JSON body for creating a catalog product.
type CreateProductRequest struct {
	Code        string  `json:"code" validate:"required,max=40"`
	Name        string  `json:"name" validate:"required,max=160"`
	Description *string `json:"description,omitempty"`
	CategoryID  int64   `json:"category_id" validate:"required,gt=0"`
	UnitID      int64   `json:"unit_id" validate:"required,gt=0"`
	Rate        float64 `json:"rate" validate:"gte=0"`
	Cost        float64 `json:"cost" validate:"gte=0"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// UpdateProductRequest mirrors the create body; all fields are required so a
// PUT always carries the full record.
type UpdateProductRequest = CreateProductRequest
