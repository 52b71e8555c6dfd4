package mapnav

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	t "github.com/evanhutnik/mapnav/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(g Geocoder, r Router, opts ...Option) *Service {
	all := append([]Option{GeocoderOption(g), RouterOption(r), ApiKeyOption("test-key")}, opts...)
	return New(all...)
}

func codeOf(tt *testing.T, err error) int {
	tt.Helper()
	var codeErr CodeError
	require.True(tt, errors.As(err, &codeErr), "expected CodeError, got %v", err)
	return codeErr.Code()
}

func TestNavigate_HappyPath(tt *testing.T) {
	router := drivingRoute()
	s := newService(knownGeocoder(), router)

	route, err := s.Navigate(context.Background(), NavigateRequest{Start: "1600 Amphitheatre Parkway", Destination: "345 Spear Street"})
	require.NoError(tt, err)
	assert.Equal(tt, googleplex, route.StartLocation)
	assert.Equal(tt, spearSt, route.EndLocation)
	assert.Equal(tt, "57.1 km", route.Distance.Text)
	assert.Equal(tt, "45 mins", route.Duration.Text)
	require.Len(tt, router.trips, 1)
	assert.Equal(tt, t.Trip{From: googleplex, To: spearSt}, router.trips[0])
}

func TestNavigate_MissingAddresses(tt *testing.T) {
	geo := knownGeocoder()
	s := newService(geo, drivingRoute())

	_, err := s.Navigate(context.Background(), NavigateRequest{Start: "", Destination: "345 Spear Street"})
	assert.Equal(tt, 400, codeOf(tt, err))
	_, err = s.Navigate(context.Background(), NavigateRequest{Start: "345 Spear Street", Destination: "   "})
	assert.Equal(tt, 400, codeOf(tt, err))
	assert.Empty(tt, geo.calls)
}

func TestNavigate_UnknownAddresses(tt *testing.T) {
	s := newService(knownGeocoder(), drivingRoute())

	_, err := s.Navigate(context.Background(), NavigateRequest{Start: "zzzz nowhere", Destination: "345 Spear Street"})
	assert.Equal(tt, 400, codeOf(tt, err))
	assert.Equal(tt, "Origin address not found", err.Error())

	_, err = s.Navigate(context.Background(), NavigateRequest{Start: "345 Spear Street", Destination: "zzzz nowhere"})
	assert.Equal(tt, 400, codeOf(tt, err))
	assert.Equal(tt, "Destination address not found", err.Error())

	_, err = s.Navigate(context.Background(), NavigateRequest{Start: "zzzz", Destination: "yyyy"})
	assert.Equal(tt, "Origin address not found", err.Error(), "origin is reported first")

	geo := knownGeocoder()
	geo.failing = map[string]error{"boom": errors.New("OVER_QUERY_LIMIT")}
	s = newService(geo, drivingRoute())

	_, err = s.Navigate(context.Background(), NavigateRequest{Start: "zzzz nowhere", Destination: "boom"})
	assert.Equal(tt, 400, codeOf(tt, err))
	assert.Equal(tt, "Origin address not found", err.Error())

	_, err = s.Navigate(context.Background(), NavigateRequest{Start: "boom", Destination: "zzzz nowhere"})
	assert.Equal(tt, 500, codeOf(tt, err))
	assert.Equal(tt, "Error fetching directions", err.Error())
}

func TestNavigate_NoRoute(tt *testing.T) {
	s := newService(knownGeocoder(), &fakeRouter{})

	_, err := s.Navigate(context.Background(), NavigateRequest{Start: "345 Spear Street", Destination: "Honolulu"})
	assert.Equal(tt, 404, codeOf(tt, err))
	assert.Equal(tt, "No route found", err.Error())
}

func TestNavigate_ProviderErrors(tt *testing.T) {
	geo := knownGeocoder()
	geo.failing = map[string]error{"boom": errors.New("REQUEST_DENIED")}
	s := newService(geo, drivingRoute())

	_, err := s.Navigate(context.Background(), NavigateRequest{Start: "boom", Destination: "345 Spear Street"})
	assert.Equal(tt, 500, codeOf(tt, err))
	assert.Equal(tt, "Error fetching directions", err.Error())

	s = newService(knownGeocoder(), &fakeRouter{err: errors.New("OVER_QUERY_LIMIT")})
	_, err = s.Navigate(context.Background(), NavigateRequest{Start: "345 Spear Street", Destination: "1600 Amphitheatre Parkway"})
	assert.Equal(tt, 500, codeOf(tt, err))
}

func TestNavigate_GeocodesConcurrently(tt *testing.T) {
	geo := knownGeocoder()
	geo.delay = 200 * time.Millisecond
	s := newService(geo, drivingRoute())

	start := time.Now()
	_, err := s.Navigate(context.Background(), NavigateRequest{Start: "1600 Amphitheatre Parkway", Destination: "345 Spear Street"})
	require.NoError(tt, err)
	assert.Less(tt, time.Since(start), 390*time.Millisecond)
	assert.ElementsMatch(tt, []string{"1600 Amphitheatre Parkway", "345 Spear Street"}, geo.calls)
}

func TestNavigate_Timeout(tt *testing.T) {
	geo := knownGeocoder()
	geo.delay = time.Second
	s := newService(geo, drivingRoute(), TimeoutOption(20*time.Millisecond))

	_, err := s.Navigate(context.Background(), NavigateRequest{Start: "1600 Amphitheatre Parkway", Destination: "345 Spear Street"})
	assert.Equal(tt, 500, codeOf(tt, err))
	assert.Contains(tt, err.Error(), "timed out")
}

func TestScriptUrl(tt *testing.T) {
	s := newService(knownGeocoder(), drivingRoute())

	u, err := url.Parse(s.ScriptUrl())
	require.NoError(tt, err)
	assert.Equal(tt, "maps.googleapis.com", u.Host)
	assert.Equal(tt, "/maps/api/js", u.Path)
	assert.Equal(tt, "test-key", u.Query().Get("key"))
	assert.Equal(tt, "places", u.Query().Get("libraries"))
}

func TestPredictions(tt *testing.T) {
	places := &fakePlaces{predictions: []t.Prediction{{ID: "abc", MainText: "345 Spear Street", SecondaryText: "San Francisco"}}}
	s := newService(knownGeocoder(), drivingRoute(), PlacesOption(places))
	token := t.NewSessionToken()

	preds, err := s.Predictions(context.Background(), "345 Sp", token)
	require.NoError(tt, err)
	assert.Len(tt, preds, 1)
	assert.Equal(tt, token, places.lastToken)

	_, err = s.Predictions(context.Background(), "", token)
	assert.Equal(tt, 400, codeOf(tt, err))
}

func TestPredictions_NotSupported(tt *testing.T) {
	s := newService(knownGeocoder(), drivingRoute())

	_, err := s.Predictions(context.Background(), "345", t.SessionToken{})
	assert.Equal(tt, 501, codeOf(tt, err))
}

func TestPlaceLocation(tt *testing.T) {
	s := newService(knownGeocoder(), drivingRoute(), PlacesOption(&fakePlaces{location: &spearSt}))
	coord, err := s.PlaceLocation(context.Background(), "abc", t.SessionToken{})
	require.NoError(tt, err)
	assert.Equal(tt, spearSt, *coord)

	s = newService(knownGeocoder(), drivingRoute(), PlacesOption(&fakePlaces{}))
	_, err = s.PlaceLocation(context.Background(), "gone", t.SessionToken{})
	assert.Equal(tt, 404, codeOf(tt, err))
}

func TestGeocode(tt *testing.T) {
	s := newService(knownGeocoder(), drivingRoute())

	coord, err := s.Geocode(context.Background(), "345 Spear Street")
	require.NoError(tt, err)
	assert.Equal(tt, spearSt, *coord)

	_, err = s.Geocode(context.Background(), "nowhere")
	assert.Equal(tt, 404, codeOf(tt, err))
}

func TestNew_PanicsWithoutDependencies(tt *testing.T) {
	assert.Panics(tt, func() { New(RouterOption(drivingRoute()), ApiKeyOption("k")) })
	assert.Panics(tt, func() { New(GeocoderOption(knownGeocoder()), ApiKeyOption("k")) })
	assert.Panics(tt, func() { New(GeocoderOption(knownGeocoder()), RouterOption(drivingRoute())) })
}
