package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/cre-analyst/deal-memo-agent/internal/config"
	"github.com/cre-analyst/deal-memo-agent/internal/models"
)

const errMapsKeyNotSet = "MAPS_API_KEY environment variable not set."

// MapsClient wraps the geocoding REST endpoint and the aerial link builder.
// Both are gated on the maps API key; a missing key degrades each call to an
// error payload rather than failing the process.
type MapsClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

func NewMapsClient(cfg *config.Config, log *zap.Logger) *MapsClient {
	return &MapsClient{
		apiKey:  cfg.MapsAPIKey,
		baseURL: cfg.GeocodingBaseURL,
		client:  &http.Client{Timeout: cfg.GeocodingTimeout},
		log:     log,
	}
}

// geocodeEnvelope is the documented shape of the geocoder's JSON response.
type geocodeEnvelope struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		PlaceID          string `json:"place_id"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		AddressComponents []struct {
			LongName  string   `json:"long_name"`
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// Geocode resolves a free-text address to coordinates, a place id, the
// formatted address, and parsed city/state/zip components. Every failure mode
// comes back as an error whose message is the payload shown to the model.
func (m *MapsClient) Geocode(ctx context.Context, address string) (*models.GeoResult, error) {
	if m.apiKey == "" {
		m.log.Error("geocoding called without a maps API key")
		return nil, errors.New(errMapsKeyNotSet)
	}

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", m.apiKey)
	reqURL := m.baseURL + "?" + q.Encode()

	m.log.Info("calling geocoding API", zap.String("address", truncate(address, 50)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("Geocoding API request failed: %v.", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			m.log.Error("geocoding API request timed out", zap.String("address", address))
			return nil, fmt.Errorf("Geocoding API request timed out for address: %s.", address)
		}
		m.log.Error("geocoding API request failed", zap.String("address", address), zap.Error(err))
		return nil, fmt.Errorf("Geocoding API request failed: %v.", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		m.log.Error("geocoding API returned non-200", zap.Int("status_code", resp.StatusCode))
		return nil, fmt.Errorf("Geocoding API request failed: HTTP %d.", resp.StatusCode)
	}

	var envelope geocodeEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("An unexpected error occurred during geocoding: %v.", err)
	}

	if envelope.Status != "OK" || len(envelope.Results) == 0 {
		m.log.Warn("geocoding API non-OK status",
			zap.String("status", envelope.Status),
			zap.String("message", envelope.ErrorMessage),
			zap.String("address", address))
		return nil, fmt.Errorf("Could not geocode address: %s. Status: %s.", address, envelope.Status)
	}

	first := envelope.Results[0]
	result := &models.GeoResult{
		Latitude:         first.Geometry.Location.Lat,
		Longitude:        first.Geometry.Location.Lng,
		PlaceID:          first.PlaceID,
		FormattedAddress: first.FormattedAddress,
	}
	for _, component := range first.AddressComponents {
		for _, t := range component.Types {
			switch t {
			case "locality":
				result.City = component.LongName
			case "administrative_area_level_1":
				// Short name gives the state abbreviation, e.g. CA.
				result.State = component.ShortName
			case "postal_code":
				result.ZipCode = component.LongName
			}
		}
	}

	m.log.Info("geocoding successful",
		zap.Float64("lat", result.Latitude),
		zap.Float64("lng", result.Longitude))
	return result, nil
}

// AerialInsights builds a map-search link for the coordinates. No imagery is
// fetched or analyzed; the summary says so. The key gate mirrors the
// geocoder's even though no network call happens here.
func (m *MapsClient) AerialInsights(latitude, longitude float64) (*models.AerialResult, error) {
	if m.apiKey == "" {
		m.log.Error("aerial insights called without a maps API key")
		return nil, errors.New(errMapsKeyNotSet)
	}

	lat := strconv.FormatFloat(latitude, 'f', -1, 64)
	lng := strconv.FormatFloat(longitude, 'f', -1, 64)
	m.log.Info("building aerial view link", zap.String("lat", lat), zap.String("lng", lng))

	return &models.AerialResult{
		Summary: "Access detailed aerial imagery and potential insights like roof geometry, " +
			"solar panel suitability, or building footprints. Full API integration " +
			"(e.g., Solar API, 3D Tiles) is complex and beyond hackathon scope for " +
			"detailed feature extraction.",
		MapLink: fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%s,%s", lat, lng),
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
