// Package mapview owns the page's single map: one instance, at most one
// marker and at most one route overlay.
package mapview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/evanhutnik/mapnav/internal/input"
	"github.com/evanhutnik/mapnav/internal/types"
	"go.uber.org/zap"
)

const (
	InitialZoom = 4
	LocalZoom   = 12
	PlaceZoom   = 15
)

// Messages shown when "my location" cannot be resolved. The page script
// served by mapnav uses the same wording.
const (
	MsgLocationFailed      = "Failed to get location. "
	MsgPermissionDenied    = "Location permission denied by user."
	MsgPositionUnavailable = "Location information is unavailable."
	MsgLocationTimeout     = "Location request timed out."
	MsgLocationUnknown     = "An unknown error occurred."
	MsgNoGeolocation       = "Geolocation is not supported by your browser and IP geolocation failed"
)

type TravelMode string

const Driving TravelMode = "DRIVING"

// Canvas draws on the underlying map widget.
type Canvas interface {
	CreateMap(center types.Coordinate, zoom int) error
	SetCenter(center types.Coordinate)
	SetZoom(zoom int)
	AddMarker(at types.Coordinate)
	RemoveMarker()
	DrawRoute(ctx context.Context, start, end types.Coordinate, mode TravelMode) error
	RemoveRoute()
}

var (
	ErrPermissionDenied    = errors.New("permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrTimeout             = errors.New("timeout")
)

// Geolocator reads the device position. Errors should wrap one of
// ErrPermissionDenied, ErrPositionUnavailable or ErrTimeout.
type Geolocator interface {
	CurrentPosition(ctx context.Context) (types.Coordinate, error)
}

type IPLocator interface {
	Locate(ctx context.Context) (types.Coordinate, error)
}

// Geocoder returns nil, nil for an address it does not know.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*types.Coordinate, error)
}

// UserError carries the message shown to the user.
type UserError struct {
	Msg string
	Err error
}

func (e *UserError) Error() string {
	return e.Msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

type RouteOverlay struct {
	Start types.Coordinate
	End   types.Coordinate
	Mode  TravelMode
}

type State struct {
	Initialized bool
	Center      types.Coordinate
	Zoom        int
	Marker      *types.Coordinate
	Route       *RouteOverlay
}

type Option func(*MapView)

func GeolocatorOption(g Geolocator) Option {
	return func(m *MapView) {
		m.geolocator = g
	}
}

func IPLocatorOption(l IPLocator) Option {
	return func(m *MapView) {
		m.ipLocator = l
	}
}

func GeocoderOption(g Geocoder) Option {
	return func(m *MapView) {
		m.geocoder = g
	}
}

func LoggerOption(l *zap.SugaredLogger) Option {
	return func(m *MapView) {
		m.Logger = l
	}
}

type MapView struct {
	canvas     Canvas
	geolocator Geolocator
	ipLocator  IPLocator
	geocoder   Geocoder
	Logger     *zap.SugaredLogger

	mu    sync.Mutex
	state State
}

func New(canvas Canvas, opts ...Option) *MapView {
	if canvas == nil {
		panic("Missing canvas in map view")
	}
	m := &MapView{canvas: canvas, Logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize creates the map on first use; afterwards it only re-centers.
// Re-centering drops whatever pan the user applied.
func (m *MapView) Initialize(center types.Coordinate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initializeLocked(center)
}

func (m *MapView) initializeLocked(center types.Coordinate) error {
	if !m.state.Initialized {
		if err := m.canvas.CreateMap(center, InitialZoom); err != nil {
			return fmt.Errorf("failed to create map: %w", err)
		}
		m.state.Initialized = true
		m.state.Zoom = InitialZoom
	} else {
		m.canvas.SetCenter(center)
	}
	m.state.Center = center
	return nil
}

func (m *MapView) PlaceMarker(at types.Coordinate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placeMarkerLocked(at)
}

func (m *MapView) placeMarkerLocked(at types.Coordinate) {
	if m.state.Marker != nil {
		m.canvas.RemoveMarker()
	}
	m.canvas.AddMarker(at)
	m.state.Marker = &at
}

// Focus centers the map on location, marks it and applies zoom.
func (m *MapView) Focus(location types.Coordinate, zoom int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.initializeLocked(location); err != nil {
		return err
	}
	m.placeMarkerLocked(location)
	m.canvas.SetZoom(zoom)
	m.state.Zoom = zoom
	return nil
}

// ShowRoute replaces any current overlay with a driving route. On failure
// no overlay is left on the map.
func (m *MapView) ShowRoute(ctx context.Context, start, end types.Coordinate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.Initialized {
		return errors.New("map is not initialized")
	}
	m.clearRouteLocked()
	if err := m.canvas.DrawRoute(ctx, start, end, Driving); err != nil {
		m.canvas.RemoveRoute()
		return fmt.Errorf("failed to draw route: %w", err)
	}
	m.state.Route = &RouteOverlay{Start: start, End: end, Mode: Driving}
	return nil
}

func (m *MapView) ClearRoute() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearRouteLocked()
}

func (m *MapView) clearRouteLocked() {
	if m.state.Route != nil {
		m.canvas.RemoveRoute()
		m.state.Route = nil
	}
}

func (m *MapView) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.state
	if s.Marker != nil {
		marker := *s.Marker
		s.Marker = &marker
	}
	if s.Route != nil {
		route := *s.Route
		s.Route = &route
	}
	return s
}

func (m *MapView) ApplyMyLocationStyling(f *input.Field) {
	f.ApplyMyLocationStyling()
}

func (m *MapView) ClearMyLocationStyling(f *input.Field) {
	f.ClearMyLocationStyling()
}

// ResolveMyLocation tries the device position first and falls back to IP
// geolocation. The map is left untouched when both fail.
func (m *MapView) ResolveMyLocation(ctx context.Context) (types.Coordinate, error) {
	if m.geolocator == nil {
		loc, err := m.locateByIP(ctx)
		if err != nil {
			m.Logger.Errorw(err.Error(), "source", "ip")
			return types.Coordinate{}, &UserError{
				Msg: MsgNoGeolocation,
				Err: err,
			}
		}
		return loc, m.Focus(loc, LocalZoom)
	}

	loc, devErr := m.geolocator.CurrentPosition(ctx)
	if devErr == nil {
		return loc, m.Focus(loc, LocalZoom)
	}
	m.Logger.Infow("device geolocation failed, falling back to ip", "error", devErr)

	loc, err := m.locateByIP(ctx)
	if err != nil {
		m.Logger.Errorw(err.Error(), "source", "ip")
		return types.Coordinate{}, &UserError{Msg: MsgLocationFailed + causeText(devErr), Err: devErr}
	}
	return loc, m.Focus(loc, LocalZoom)
}

func (m *MapView) locateByIP(ctx context.Context) (types.Coordinate, error) {
	if m.ipLocator == nil {
		return types.Coordinate{}, errors.New("no ip locator configured")
	}
	loc, err := m.ipLocator.Locate(ctx)
	if err != nil {
		return types.Coordinate{}, fmt.Errorf("ip geolocation failed: %w", err)
	}
	return loc, nil
}

func causeText(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return MsgPermissionDenied
	case errors.Is(err, ErrPositionUnavailable):
		return MsgPositionUnavailable
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return MsgLocationTimeout
	default:
		return MsgLocationUnknown
	}
}

// Search geocodes a single address and focuses the map on it.
func (m *MapView) Search(ctx context.Context, address string) (types.Coordinate, error) {
	if strings.TrimSpace(address) == "" {
		return types.Coordinate{}, &UserError{Msg: "Please enter an address to search"}
	}
	if m.geocoder == nil {
		return types.Coordinate{}, errors.New("no geocoder configured")
	}
	loc, err := m.geocoder.Geocode(ctx, address)
	if err != nil {
		m.Logger.Errorw(err.Error(), "address", address)
		return types.Coordinate{}, &UserError{Msg: "Location not found", Err: err}
	}
	if loc == nil {
		return types.Coordinate{}, &UserError{Msg: "Location not found"}
	}
	return *loc, m.Focus(*loc, PlaceZoom)
}
