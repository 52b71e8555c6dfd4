// Package client wires the page-side pieces together: the two inputs, the
// map view, the autocomplete coordinator and the navigation flow.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/evanhutnik/mapnav/internal/autocomplete"
	"github.com/evanhutnik/mapnav/internal/backend"
	"github.com/evanhutnik/mapnav/internal/input"
	"github.com/evanhutnik/mapnav/internal/mapview"
	"github.com/evanhutnik/mapnav/internal/navigation"
	"github.com/evanhutnik/mapnav/internal/types"
	"go.uber.org/zap"
)

// API is the server surface the page talks to; *backend.Client implements it.
type API interface {
	autocomplete.Provider
	navigation.API
	RandomLocation(ctx context.Context) (types.Coordinate, error)
	Geocode(ctx context.Context, address string) (*types.Coordinate, error)
}

type Config struct {
	API        API
	Canvas     mapview.Canvas
	Dropdown   autocomplete.Dropdown
	Display    navigation.Display
	Notifier   navigation.Notifier
	Geolocator mapview.Geolocator
	IPLocator  mapview.IPLocator
	Logger     *zap.SugaredLogger

	QuietPeriod time.Duration
}

type App struct {
	Start        *input.Field
	Destination  *input.Field
	Map          *mapview.MapView
	Autocomplete *autocomplete.Coordinator
	Navigation   *navigation.Flow

	api      API
	notifier navigation.Notifier
	Logger   *zap.SugaredLogger
}

func New(cfg Config) *App {
	if cfg.API == nil {
		panic("Missing api in client app")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	a := &App{
		Start:       input.NewField(input.Start, "Choose starting point"),
		Destination: input.NewField(input.Destination, "Choose destination"),
		api:         cfg.API,
		notifier:    cfg.Notifier,
		Logger:      logger,
	}

	mapOpts := []mapview.Option{
		mapview.GeocoderOption(geocoder{cfg.API}),
		mapview.LoggerOption(logger.Named("map")),
	}
	if cfg.Geolocator != nil {
		mapOpts = append(mapOpts, mapview.GeolocatorOption(cfg.Geolocator))
	}
	if cfg.IPLocator != nil {
		mapOpts = append(mapOpts, mapview.IPLocatorOption(cfg.IPLocator))
	}
	a.Map = mapview.New(cfg.Canvas, mapOpts...)

	acOpts := []autocomplete.Option{autocomplete.LoggerOption(logger.Named("autocomplete"))}
	if cfg.QuietPeriod > 0 {
		acOpts = append(acOpts, autocomplete.QuietPeriodOption(cfg.QuietPeriod))
	}
	a.Autocomplete = autocomplete.New(cfg.API, cfg.Dropdown, a.Map, []*input.Field{a.Start, a.Destination}, acOpts...)

	navOpts := []navigation.Option{navigation.LoggerOption(logger.Named("navigation"))}
	if cfg.Display != nil {
		navOpts = append(navOpts, navigation.DisplayOption(cfg.Display))
	}
	if cfg.Notifier != nil {
		navOpts = append(navOpts, navigation.NotifierOption(cfg.Notifier))
	}
	a.Navigation = navigation.New(cfg.API, a.Map, navOpts...)
	return a
}

// Init centers the freshly created map on a random point and marks it.
func (a *App) Init(ctx context.Context) error {
	loc, err := a.api.RandomLocation(ctx)
	if err != nil {
		a.Logger.Errorw(err.Error(), "step", "random-location")
		return fmt.Errorf("failed to initialize map: %w", err)
	}
	if err := a.Map.Initialize(loc); err != nil {
		return err
	}
	a.Map.PlaceMarker(loc)
	return nil
}

// Swap exchanges the start and destination inputs.
func (a *App) Swap() {
	input.Swap(a.Start, a.Destination)
	a.Autocomplete.Reset(input.Start)
	a.Autocomplete.Reset(input.Destination)
}

func (a *App) Navigate(ctx context.Context) (*types.RouteResult, error) {
	return a.Navigation.Navigate(ctx, a.Start.Query(), a.Destination.Query())
}

func (a *App) Search(ctx context.Context, address string) (types.Coordinate, error) {
	loc, err := a.Map.Search(ctx, address)
	a.notify(err)
	return loc, err
}

func (a *App) Select(ctx context.Context, id input.ID, index int) error {
	err := a.Autocomplete.Select(ctx, id, index)
	a.notify(err)
	return err
}

func (a *App) notify(err error) {
	var userErr *mapview.UserError
	if a.notifier != nil && errors.As(err, &userErr) {
		a.notifier.Notify(userErr.Msg)
	}
}

// geocoder treats a 404 from the server as an unknown address.
type geocoder struct {
	api API
}

func (g geocoder) Geocode(ctx context.Context, address string) (*types.Coordinate, error) {
	loc, err := g.api.Geocode(ctx, address)
	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
		return nil, nil
	}
	return loc, err
}
