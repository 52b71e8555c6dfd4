package mapnav

import (
	"context"
	"errors"
	"fmt"
	"github.com/evanhutnik/mapnav/internal/location"
	t "github.com/evanhutnik/mapnav/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"net/url"
	"strings"
	"time"
)

const scriptBaseUrl = "https://maps.googleapis.com/maps/api/js"

type Geocoder interface {
	Geocode(ctx context.Context, address string) (*t.Coordinate, error)
}

type Router interface {
	Route(ctx context.Context, trip t.Trip) (*t.Route, error)
}

// Places backs the autocomplete endpoints. Providers without place search
// leave it nil.
type Places interface {
	Predictions(ctx context.Context, input string, token t.SessionToken) ([]t.Prediction, error)
	PlaceLocation(ctx context.Context, placeID string, token t.SessionToken) (*t.Coordinate, error)
}

type NavigateRequest struct {
	Start       string `json:"start"`
	Destination string `json:"destination"`
}

type NavigateResponse struct {
	Route *t.Route `json:"route"`
}

type CodeError struct {
	code int
	msg  string
}

func (c CodeError) Error() string {
	return c.msg
}

func (c CodeError) Code() int {
	return c.code
}

type Option func(*Service)

func GeocoderOption(g Geocoder) Option {
	return func(s *Service) {
		s.geocoder = g
	}
}

func RouterOption(r Router) Option {
	return func(s *Service) {
		s.router = r
	}
}

func PlacesOption(p Places) Option {
	return func(s *Service) {
		s.places = p
	}
}

func ApiKeyOption(apiKey string) Option {
	return func(s *Service) {
		s.apiKey = apiKey
	}
}

func TimeoutOption(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

func LoggerOption(l *zap.SugaredLogger) Option {
	return func(s *Service) {
		s.Logger = l
	}
}

func RandomOption(r *location.RandomService) Option {
	return func(s *Service) {
		s.random = r
	}
}

type Service struct {
	geocoder Geocoder
	router   Router
	places   Places
	random   *location.RandomService
	apiKey   string
	timeout  time.Duration

	Logger *zap.SugaredLogger
}

func New(opts ...Option) *Service {
	s := &Service{
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.geocoder == nil {
		panic("Missing geocoder in mapnav service")
	}
	if s.router == nil {
		panic("Missing router in mapnav service")
	}
	if s.apiKey == "" {
		panic("Missing apikey in mapnav service")
	}
	if s.random == nil {
		s.random = location.NewRandomService(0)
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop().Sugar()
	}
	return s
}

func (s *Service) RandomLocation() t.Coordinate {
	return s.random.Next()
}

// ScriptUrl is the Maps JavaScript API loader URL handed to the page.
func (s *Service) ScriptUrl() string {
	q := url.Values{}
	q.Set("key", s.apiKey)
	q.Set("libraries", "places")
	return scriptBaseUrl + "?" + q.Encode()
}

// Navigate geocodes both addresses concurrently, then asks for a driving
// route between them.
func (s *Service) Navigate(ctx context.Context, req NavigateRequest) (*t.Route, error) {
	if strings.TrimSpace(req.Start) == "" {
		return nil, CodeError{code: 400, msg: "Missing 'start' address in request"}
	} else if strings.TrimSpace(req.Destination) == "" {
		return nil, CodeError{code: 400, msg: "Missing 'destination' address in request"}
	}

	trip, err := s.tripCoordinates(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.tripRoute(ctx, trip)
}

func (s *Service) tripCoordinates(ctx context.Context, req NavigateRequest) (t.Trip, error) {
	var fromCoord, toCoord *t.Coordinate
	var fromErr, toErr error
	var g errgroup.Group

	g.Go(func() error {
		fromCoord, fromErr = s.geoCode(ctx, req.Start)
		return nil
	})
	g.Go(func() error {
		toCoord, toErr = s.geoCode(ctx, req.Destination)
		return nil
	})
	_ = g.Wait()

	// Results are judged origin first, as if looked up one after the other.
	if fromErr != nil {
		return t.Trip{}, fromErr
	}
	if fromCoord == nil {
		return t.Trip{}, CodeError{code: 400, msg: "Origin address not found"}
	}
	if toErr != nil {
		return t.Trip{}, toErr
	}
	if toCoord == nil {
		return t.Trip{}, CodeError{code: 400, msg: "Destination address not found"}
	}
	return t.Trip{From: *fromCoord, To: *toCoord}, nil
}

func (s *Service) geoCode(ctx context.Context, address string) (*t.Coordinate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	coord, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.Logger.Errorw(err.Error(), "address", address, "action", "Geocode")
		return nil, upstreamError(err, "Error fetching directions")
	}
	return coord, nil
}

func (s *Service) tripRoute(ctx context.Context, trip t.Trip) (*t.Route, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	route, err := s.router.Route(ctx, trip)
	if err != nil {
		s.Logger.Errorf("Error routing trip (%v,%v) to (%v,%v): %v",
			trip.From.Lat, trip.From.Lng, trip.To.Lat, trip.To.Lng, err.Error())
		return nil, upstreamError(err, "Error fetching directions")
	}
	if route == nil {
		return nil, CodeError{code: 404, msg: "No route found"}
	}
	return route, nil
}

// Geocode resolves a single address for the page's search box.
func (s *Service) Geocode(ctx context.Context, address string) (*t.Coordinate, error) {
	if strings.TrimSpace(address) == "" {
		return nil, CodeError{code: 400, msg: "Missing 'address' query parameter in request"}
	}
	coord, err := s.geoCode(ctx, address)
	if err != nil {
		return nil, err
	}
	if coord == nil {
		return nil, CodeError{code: 404, msg: "Address not found"}
	}
	return coord, nil
}

func (s *Service) Predictions(ctx context.Context, input string, token t.SessionToken) ([]t.Prediction, error) {
	if s.places == nil {
		return nil, CodeError{code: 501, msg: "Autocomplete is not available"}
	}
	if strings.TrimSpace(input) == "" {
		return nil, CodeError{code: 400, msg: "Missing 'input' query parameter in request"}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	predictions, err := s.places.Predictions(ctx, input, token)
	if err != nil {
		s.Logger.Errorw(err.Error(), "input", input, "action", "Predictions")
		return nil, upstreamError(err, "Error fetching predictions")
	}
	if predictions == nil {
		predictions = []t.Prediction{}
	}
	return predictions, nil
}

func (s *Service) PlaceLocation(ctx context.Context, placeID string, token t.SessionToken) (*t.Coordinate, error) {
	if s.places == nil {
		return nil, CodeError{code: 501, msg: "Place details are not available"}
	}
	if placeID == "" {
		return nil, CodeError{code: 400, msg: "Missing 'place_id' query parameter in request"}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	coord, err := s.places.PlaceLocation(ctx, placeID, token)
	if err != nil {
		s.Logger.Errorw(err.Error(), "placeId", placeID, "action", "PlaceLocation")
		return nil, upstreamError(err, "Error fetching place details")
	}
	if coord == nil {
		return nil, CodeError{code: 404, msg: "Place not found"}
	}
	return coord, nil
}

// upstreamError hides provider details from callers; a deadline gets its own
// message so timeouts stay distinguishable from provider failures.
func upstreamError(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeError{code: 500, msg: fmt.Sprintf("%s: upstream timed out", msg)}
	}
	return CodeError{code: 500, msg: msg}
}
