// README: Google Maps geocoding for bookings that arrive without coordinates.
package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"wireconnect/internal/types"
)

// GeocodeService resolves free-text addresses through the Google Geocoding API.
type GeocodeService struct {
	client *maps.Client
}

// NewGeocodeService creates a GeocodeService with the given API key.
func NewGeocodeService(apiKey string) (*GeocodeService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeocodeService{client: client}, nil
}

// Geocode returns the coordinates for an address, biased to Nigeria. No match
// is an error; the booking service treats geocoding as best effort.
func (s *GeocodeService) Geocode(ctx context.Context, address string) (*types.Point, error) {
	r := &maps.GeocodingRequest{
		Address: address,
		Region:  "NG",
	}
	results, err := s.client.Geocode(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no geocoding result for %q", address)
	}
	loc := results[0].Geometry.Location
	return &types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}
