// Package google adapts the Google Maps Platform web services (geocoding,
// directions, place autocomplete and place details) to the provider
// interfaces used by the mapnav service.
package google

import (
	"context"
	"fmt"
	"strings"

	"github.com/evanhutnik/mapnav/internal/common"
	"github.com/evanhutnik/mapnav/internal/types"
	"github.com/google/uuid"
	"googlemaps.github.io/maps"
)

// Provider talks to Google through the official Go client.
type Provider struct {
	client *maps.Client
}

// New builds a Provider for apiKey. Extra options are passed to the
// underlying maps client (HTTP client, base URL, rate limit).
func New(apiKey string, opts ...maps.ClientOption) (*Provider, error) {
	all := append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)
	c, err := maps.NewClient(all...)
	if err != nil {
		return nil, fmt.Errorf("creating maps client: %w", err)
	}
	return &Provider{client: c}, nil
}

// Geocode returns the first match for address, or nil when Google has none.
func (p *Provider) Geocode(ctx context.Context, address string) (*types.Coordinate, error) {
	results, err := p.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		if isStatus(err, "ZERO_RESULTS") {
			return nil, nil
		}
		return nil, fmt.Errorf("geocoding %q: %w", address, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	loc := results[0].Geometry.Location
	return &types.Coordinate{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// Route requests a driving route leaving now. A nil route means Google
// found no way between the two points.
func (p *Provider) Route(ctx context.Context, trip types.Trip) (*types.Route, error) {
	routes, _, err := p.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:        trip.From.String(),
		Destination:   trip.To.String(),
		Mode:          maps.TravelModeDriving,
		DepartureTime: "now",
	})
	if err != nil {
		if isStatus(err, "ZERO_RESULTS") {
			return nil, nil
		}
		return nil, fmt.Errorf("directions: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 || routes[0].Legs[0] == nil {
		return nil, nil
	}

	leg := routes[0].Legs[0]
	distanceText := leg.Distance.HumanReadable
	if distanceText == "" {
		distanceText = common.DistanceText(float64(leg.Distance.Meters))
	}
	return &types.Route{
		StartLocation: trip.From,
		EndLocation:   trip.To,
		Distance:      types.Measure{Text: distanceText, Value: int64(leg.Distance.Meters)},
		Duration: types.Measure{
			Text:  common.DurationText(leg.Duration),
			Value: int64(leg.Duration.Seconds()),
		},
	}, nil
}

// Predictions runs a place autocomplete query inside the given session.
func (p *Provider) Predictions(ctx context.Context, input string, token types.SessionToken) ([]types.Prediction, error) {
	req := &maps.PlaceAutocompleteRequest{Input: input}
	if !token.IsZero() {
		req.SessionToken = maps.PlaceAutocompleteSessionToken(uuid.UUID(token))
	}

	resp, err := p.client.PlaceAutocomplete(ctx, req)
	if err != nil {
		if isStatus(err, "ZERO_RESULTS") {
			return []types.Prediction{}, nil
		}
		return nil, fmt.Errorf("place autocomplete: %w", err)
	}

	predictions := make([]types.Prediction, 0, len(resp.Predictions))
	for _, pr := range resp.Predictions {
		main := pr.StructuredFormatting.MainText
		if main == "" {
			main = pr.Description
		}
		predictions = append(predictions, types.Prediction{
			ID:            pr.PlaceID,
			MainText:      main,
			SecondaryText: pr.StructuredFormatting.SecondaryText,
		})
	}
	return predictions, nil
}

// PlaceLocation resolves a prediction id to its coordinates, closing the
// autocomplete session. Unknown ids yield nil.
func (p *Provider) PlaceLocation(ctx context.Context, placeID string, token types.SessionToken) (*types.Coordinate, error) {
	req := &maps.PlaceDetailsRequest{
		PlaceID: placeID,
		Fields:  []maps.PlaceDetailsFieldMask{maps.PlaceDetailsFieldMaskGeometry},
	}
	if !token.IsZero() {
		req.SessionToken = maps.PlaceAutocompleteSessionToken(uuid.UUID(token))
	}

	place, err := p.client.PlaceDetails(ctx, req)
	if err != nil {
		if isStatus(err, "NOT_FOUND") || isStatus(err, "INVALID_REQUEST") || isStatus(err, "ZERO_RESULTS") {
			return nil, nil
		}
		return nil, fmt.Errorf("place details %q: %w", placeID, err)
	}
	loc := place.Geometry.Location
	return &types.Coordinate{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// isStatus matches the "maps: STATUS - message" errors of the client.
func isStatus(err error, status string) bool {
	return strings.Contains(err.Error(), status)
}
