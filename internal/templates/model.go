package templates

import "time"

// Template controls the look of a rendered quote PDF.
type Template struct {
	ID                    int64     `json:"id"`
	Name                  string    `json:"name"`
	PageSize              string    `json:"page_size"`
	AccentColor           string    `json:"accent_color"`
	ShowLogo              bool      `json:"show_logo"`
	LogoURL               *string   `json:"logo_url,omitempty"`
	HeaderText            *string   `json:"header_text,omitempty"`
	FooterText            *string   `json:"footer_text,omitempty"`
	ShowCategoryBreakdown bool      `json:"show_category_breakdown"`
	IsDefault             bool      `json:"is_default"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Fallback is used when no template has been configured yet.
func Fallback() Template {
	return Template{
		Name:                  "Default",
		PageSize:              "A4",
		AccentColor:           "#1f2937",
		ShowCategoryBreakdown: true,
	}
}
