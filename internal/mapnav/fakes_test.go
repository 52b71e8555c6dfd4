package mapnav

import (
	"context"
	"sync"
	"time"

	t "github.com/evanhutnik/mapnav/internal/types"
)

type fakeGeocoder struct {
	mu      sync.Mutex
	known   map[string]t.Coordinate
	failing map[string]error
	delay   time.Duration
	calls   []string
}

func (f *fakeGeocoder) Geocode(ctx context.Context, address string) (*t.Coordinate, error) {
	f.mu.Lock()
	f.calls = append(f.calls, address)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.failing[address]; ok {
		return nil, err
	}
	if c, ok := f.known[address]; ok {
		return &c, nil
	}
	return nil, nil
}

type fakeRouter struct {
	route *t.Route
	err   error
	trips []t.Trip
}

func (f *fakeRouter) Route(_ context.Context, trip t.Trip) (*t.Route, error) {
	f.trips = append(f.trips, trip)
	if f.err != nil {
		return nil, f.err
	}
	if f.route == nil {
		return nil, nil
	}
	r := *f.route
	r.StartLocation = trip.From
	r.EndLocation = trip.To
	return &r, nil
}

type fakePlaces struct {
	predictions []t.Prediction
	location    *t.Coordinate
	err         error
	lastToken   t.SessionToken
}

func (f *fakePlaces) Predictions(_ context.Context, _ string, token t.SessionToken) ([]t.Prediction, error) {
	f.lastToken = token
	return f.predictions, f.err
}

func (f *fakePlaces) PlaceLocation(_ context.Context, _ string, token t.SessionToken) (*t.Coordinate, error) {
	f.lastToken = token
	return f.location, f.err
}

var (
	googleplex = t.Coordinate{Lat: 37.4224, Lng: -122.0842}
	spearSt    = t.Coordinate{Lat: 37.7906, Lng: -122.3896}
)

func knownGeocoder() *fakeGeocoder {
	return &fakeGeocoder{known: map[string]t.Coordinate{
		"1600 Amphitheatre Parkway": googleplex,
		"345 Spear Street":          spearSt,
		"Honolulu":                  {Lat: 21.3069, Lng: -157.8583},
	}}
}

func drivingRoute() *fakeRouter {
	return &fakeRouter{route: &t.Route{
		Distance: t.Measure{Text: "57.1 km", Value: 57120},
		Duration: t.Measure{Text: "45 mins", Value: 2690},
	}}
}
