package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps reverse geocoding services.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// ErrEmptyResponse is returned when the Google Maps API responds with an empty result.
var ErrEmptyResponse = errors.New("get empty response from Google Maps API")

// NewGoogleProvider initializes a new GoogleProvider with the given client and logger.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// ReverseGeocode takes a context and coordinates as input, and returns
// the structured address of the location using the Google Maps Geocoding
// API. Address components are mapped onto the provider-neutral address
// model. If the response is empty, it returns an appropriate error.
func (gp *GoogleProvider) ReverseGeocode(
	ctx context.Context,
	coords models.Coordinates,
) (*models.Address, error) {
	gp.log.DebugContext(ctx, "Reverse geocoding using Google Maps",
		"lat", coords.Latitude, "lon", coords.Longitude)

	req := maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: coords.Latitude, Lng: coords.Longitude},
	}
	results, err := gp.client.ReverseGeocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to reverse geocode coordinates: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrEmptyResponse
	}

	addr := &models.Address{}
	for _, component := range results[0].AddressComponents {
		for _, kind := range component.Types {
			switch kind {
			case "locality":
				addr.City = component.LongName
			case "administrative_area_level_1":
				addr.State = component.LongName
			case "country":
				addr.Country = component.LongName
			case "postal_code":
				addr.Postcode = component.LongName
			case "route":
				addr.Road = component.LongName
			case "sublocality":
				addr.Suburb = component.LongName
			}
		}
	}

	return addr, nil
}
