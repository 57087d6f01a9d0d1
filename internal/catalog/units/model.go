package units

import "time"

// Unit is a measurement unit products are quoted in. Units that share a base
// unit are mutually convertible through their factors; a base unit has a nil
// BaseUnitID and an implicit factor of 1.
type Unit struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	BaseUnitID *int64    `json:"base_unit_id,omitempty"`
	Factor     float64   `json:"factor"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// baseOf resolves the root of a unit's conversion family.
func baseOf(u Unit) int64 {
	if u.BaseUnitID != nil {
		return *u.BaseUnitID
	}
	return u.ID
}

// factorOf returns the multiplier from one unit to its base unit.
func factorOf(u Unit) float64 {
	if u.BaseUnitID == nil {
		return 1
	}
	return u.Factor
}
