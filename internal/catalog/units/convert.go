package units

import (
	"fmt"

	"github.com/elvenwooddev-web/designquote/internal/platform/httpx"
)

// Convert translates a quantity between two units of the same family.
// Quantities pass through the shared base unit: qty * factor(from) / factor(to).
func Convert(qty float64, from, to Unit) (float64, error) {
	if from.ID == to.ID {
		return qty, nil
	}
	if baseOf(from) != baseOf(to) {
		return 0, fmt.Errorf("%w: units %s and %s have different base units", httpx.ErrValidation, from.Code, to.Code)
	}
	toFactor := factorOf(to)
	if toFactor == 0 {
		return 0, fmt.Errorf("%w: unit %s has zero conversion factor", httpx.ErrValidation, to.Code)
	}
	return qty * factorOf(from) / toFactor, nil
}
