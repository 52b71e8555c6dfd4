package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/evanhutnik/mapnav/internal/autocomplete"
	"github.com/evanhutnik/mapnav/internal/backend"
	"github.com/evanhutnik/mapnav/internal/common"
	"github.com/evanhutnik/mapnav/internal/input"
	"github.com/evanhutnik/mapnav/internal/location"
	"github.com/evanhutnik/mapnav/internal/mapnav"
	"github.com/evanhutnik/mapnav/internal/mapview"
	"github.com/evanhutnik/mapnav/internal/navigation"
	"github.com/evanhutnik/mapnav/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	googleplex = types.Coordinate{Lat: 37.4224, Lng: -122.0842}
	spearSt    = types.Coordinate{Lat: 37.7904, Lng: -122.3893}
	honolulu   = types.Coordinate{Lat: 21.3069, Lng: -157.8583}
)

type world struct{}

func (world) Geocode(_ context.Context, address string) (*types.Coordinate, error) {
	switch {
	case address == googleplex.String(), strings.Contains(address, "Amphitheatre"):
		return &googleplex, nil
	case strings.Contains(address, "Spear"):
		return &spearSt, nil
	case strings.Contains(address, "Honolulu"):
		return &honolulu, nil
	}
	return nil, nil
}

func (world) Route(_ context.Context, trip types.Trip) (*types.Route, error) {
	if trip.To == honolulu || trip.From == honolulu {
		return nil, nil
	}
	return &types.Route{
		StartLocation: trip.From,
		EndLocation:   trip.To,
		Distance:      types.Measure{Text: common.DistanceText(56300), Value: 56300},
		Duration:      types.Measure{Text: common.DurationText(41 * time.Minute), Value: 2460},
	}, nil
}

func (world) Predictions(_ context.Context, in string, _ types.SessionToken) ([]types.Prediction, error) {
	return []types.Prediction{{ID: "spear", MainText: "345 Spear Street", SecondaryText: "San Francisco, CA, USA"}}, nil
}

func (world) PlaceLocation(_ context.Context, id string, _ types.SessionToken) (*types.Coordinate, error) {
	if id == "spear" {
		return &spearSt, nil
	}
	return nil, nil
}

type page struct {
	mu       sync.Mutex
	messages []string
	owner    input.ID
	distance string
	duration string
}

func (p *page) Notify(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
}

func (p *page) ShowTrip(distance, duration string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.distance, p.duration = distance, duration
}

func (p *page) Show(owner input.ID, _ []autocomplete.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.owner = owner
}

func (p *page) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.owner = ""
}

func newApp(t *testing.T) (*App, *mapview.TextCanvas, *page) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := mapnav.New(
		mapnav.GeocoderOption(world{}),
		mapnav.RouterOption(world{}),
		mapnav.PlacesOption(world{}),
		mapnav.ApiKeyOption("test-key"),
		mapnav.RandomOption(location.NewRandomService(7)),
	)
	srv := httptest.NewServer(svc.Handler(mapnav.HandlerConfig{}))
	t.Cleanup(srv.Close)

	canvas := mapview.NewTextCanvas(nil)
	p := &page{}
	app := New(Config{
		API:         backend.New(backend.BaseUrlOption(srv.URL), backend.HTTPClientOption(srv.Client())),
		Canvas:      canvas,
		Dropdown:    p,
		Display:     p,
		Notifier:    p,
		IPLocator:   fixedLocator(googleplex),
		QuietPeriod: 10 * time.Millisecond,
	})
	return app, canvas, p
}

type fixedLocator types.Coordinate

func (l fixedLocator) Locate(context.Context) (types.Coordinate, error) {
	return types.Coordinate(l), nil
}

func TestNew_PanicsWithoutAPI(t *testing.T) {
	assert.Panics(t, func() { New(Config{}) })
}

func TestInitPlacesRandomMarker(t *testing.T) {
	app, canvas, _ := newApp(t)

	require.NoError(t, app.Init(context.Background()))

	s := app.Map.State()
	assert.True(t, s.Initialized)
	assert.True(t, s.Center.Valid())
	assert.Equal(t, mapview.InitialZoom, s.Zoom)
	require.NotNil(t, s.Marker)
	assert.Equal(t, s.Center, *s.Marker)
	maps, markers, _ := canvas.Counts()
	assert.Equal(t, 1, maps)
	assert.Equal(t, 1, markers)
}

func TestNavigateHappyPath(t *testing.T) {
	app, canvas, p := newApp(t)
	require.NoError(t, app.Init(context.Background()))
	app.Start.SetValue("1600 Amphitheatre Parkway")
	app.Destination.SetValue("345 Spear Street")

	res, err := app.Navigate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, googleplex, res.Start)
	assert.Equal(t, spearSt, res.End)
	assert.Equal(t, "56.3 km", p.distance)
	assert.Equal(t, "41 mins", p.duration)
	_, _, routes := canvas.Counts()
	assert.Equal(t, 1, routes)
}

func TestNavigateFailuresShowDistinctMessages(t *testing.T) {
	app, _, p := newApp(t)
	require.NoError(t, app.Init(context.Background()))

	app.Start.SetValue("")
	app.Destination.SetValue("345 Spear Street")
	_, err := app.Navigate(context.Background())
	assert.ErrorIs(t, err, navigation.ErrValidation)

	app.Start.SetValue("Atlantis")
	_, err = app.Navigate(context.Background())
	assert.ErrorIs(t, err, navigation.ErrNotFound)

	app.Start.SetValue("Honolulu")
	_, err = app.Navigate(context.Background())
	assert.ErrorIs(t, err, navigation.ErrNotFound)

	assert.Equal(t, []string{
		navigation.MsgMissingInput,
		"Origin address not found",
		navigation.MsgNoRoute,
	}, p.messages)
	assert.Nil(t, app.Map.State().Route)
}

func TestSwap(t *testing.T) {
	app, _, _ := newApp(t)
	app.Start.SetValue("1600 Amphitheatre Parkway")
	app.Destination.SelectPlace("345 Spear Street San Francisco")

	app.Swap()

	assert.Equal(t, "345 Spear Street San Francisco", app.Start.Value())
	assert.Equal(t, input.PlaceSelected, app.Start.State())
	assert.Equal(t, "1600 Amphitheatre Parkway", app.Destination.Value())
}

func TestSearch(t *testing.T) {
	app, _, p := newApp(t)

	loc, err := app.Search(context.Background(), "345 Spear Street")
	require.NoError(t, err)
	assert.Equal(t, spearSt, loc)
	assert.Equal(t, mapview.PlaceZoom, app.Map.State().Zoom)

	_, err = app.Search(context.Background(), "Atlantis")
	require.Error(t, err)
	_, err = app.Search(context.Background(), "")
	require.Error(t, err)

	assert.Equal(t, []string{"Location not found", "Please enter an address to search"}, p.messages)
}

func TestAutocompleteThenNavigateFromMyLocation(t *testing.T) {
	app, _, _ := newApp(t)
	require.NoError(t, app.Init(context.Background()))

	app.Autocomplete.Input(input.Start, "m", "m")
	require.Eventually(t, func() bool { return visibleFor(app) == input.Start }, time.Second, 5*time.Millisecond)
	require.NoError(t, app.Select(context.Background(), input.Start, 0))
	assert.Equal(t, googleplex.String(), app.Start.Query())

	app.Autocomplete.Input(input.Destination, "3", "3")
	require.Eventually(t, func() bool { return visibleFor(app) == input.Destination }, time.Second, 5*time.Millisecond)
	require.NoError(t, app.Select(context.Background(), input.Destination, 1))
	assert.Equal(t, "345 Spear Street San Francisco, CA, USA", app.Destination.Value())

	res, err := app.Navigate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, googleplex, res.Start)
	assert.Equal(t, spearSt, res.End)
}

func visibleFor(app *App) input.ID {
	owner, _ := app.Autocomplete.Visible()
	return owner
}
