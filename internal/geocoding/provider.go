package geocoding

import (
	"context"

	"github.com/UnknownOlympus/pinpoint/internal/models"
)

// Provider is an interface that defines a method for reverse geocoding
// a coordinate pair. The ReverseGeocode method takes a context and the
// coordinates as input, and returns the structured address and an error
// if any occurs.
type Provider interface {
	ReverseGeocode(ctx context.Context, coords models.Coordinates) (*models.Address, error)
}
