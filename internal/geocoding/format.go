package geocoding

import (
	"strings"

	"github.com/UnknownOlympus/pinpoint/internal/models"
)

// unknownLocation is the fallback for addresses with no usable fields.
const unknownLocation = "Unknown location"

// FormatLocation renders a structured address into a single display
// string with a strict field-priority policy: the first populated of
// city/town/village/hamlet, then the first populated of
// state/province/region, then the country, comma-joined in that fixed
// order. Missing segments are omitted; a fully empty address renders as
// "Unknown location".
func FormatLocation(addr *models.Address) string {
	if addr == nil {
		return unknownLocation
	}

	var parts []string

	for _, candidate := range []string{addr.City, addr.Town, addr.Village, addr.Hamlet} {
		if candidate != "" {
			parts = append(parts, candidate)
			break
		}
	}

	for _, candidate := range []string{addr.State, addr.Province, addr.Region} {
		if candidate != "" {
			parts = append(parts, candidate)
			break
		}
	}

	if addr.Country != "" {
		parts = append(parts, addr.Country)
	}

	if len(parts) == 0 {
		return unknownLocation
	}

	return strings.Join(parts, ", ")
}
