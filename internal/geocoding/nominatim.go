package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"golang.org/x/time/rate"
)

// NominatimProvider implements the Provider interface using
// OpenStreetMap's Nominatim reverse geocoding API. This is a free
// service with usage limits (1 request/second for fair use).
type NominatimProvider struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the Nominatim reverse endpoint
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter honoring the fair-use policy
	// userAgent is required by Nominatim usage policy
	userAgent string
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// nominatimReverseURL is the public Nominatim reverse geocoding endpoint.
const nominatimReverseURL = "https://nominatim.openstreetmap.org/reverse"

// reverseZoomLevel requests building-level address detail.
const reverseZoomLevel = "18"

// nominatimResponse represents the JSON response from the Nominatim
// reverse endpoint. Only the structured address block is consumed.
type nominatimResponse struct {
	DisplayName string         `json:"display_name"`
	Address     models.Address `json:"address"`
}

// NewNominatimProvider creates a new Nominatim reverse geocoding
// provider using the public API endpoint. The user agent must identify
// the application per the Nominatim usage policy:
// https://operations.osmfoundation.org/policies/nominatim/
func NewNominatimProvider(userAgent string, log *slog.Logger) *NominatimProvider {
	const timeout = 10
	return &NominatimProvider{
		client: &http.Client{
			Timeout: timeout * time.Second,
		},
		baseURL:   nominatimReverseURL,
		log:       log,
		limiter:   rate.NewLimiter(rate.Limit(1), 1),
		userAgent: userAgent,
	}
}

// NewNominatimProviderWithClient creates a Nominatim provider with a
// custom HTTP client. Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(client HTTPClient, userAgent string, log *slog.Logger) *NominatimProvider {
	return &NominatimProvider{
		client:    client,
		baseURL:   nominatimReverseURL,
		log:       log,
		limiter:   rate.NewLimiter(rate.Inf, 1),
		userAgent: userAgent,
	}
}

// ReverseGeocode converts coordinates into a structured address using
// the Nominatim API. Any non-200 response is an error carrying the
// upstream status code and body.
func (np *NominatimProvider) ReverseGeocode(
	ctx context.Context,
	coords models.Coordinates,
) (*models.Address, error) {
	if err := np.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	np.log.DebugContext(ctx, "Reverse geocoding using Nominatim",
		"lat", coords.Latitude, "lon", coords.Longitude)

	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	query.Set("format", "json")
	query.Set("addressdetails", "1") // Include the structured address breakdown
	query.Set("zoom", reverseZoomLevel)
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set required headers per Nominatim usage policy
	req.Header.Set("User-Agent", np.userAgent)

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	np.log.DebugContext(ctx, "Nominatim raw response", "body", string(body))

	var result nominatimResponse
	if err = json.Unmarshal(body, &result); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err, "body", string(body))
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	np.log.DebugContext(ctx, "Nominatim found result", "display_name", result.DisplayName)

	return &result.Address, nil
}
