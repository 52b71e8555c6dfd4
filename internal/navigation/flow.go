// Package navigation runs the "Navigate" button: validate the two inputs,
// ask the server for a route, draw it and show distance and duration.
package navigation

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/evanhutnik/mapnav/internal/backend"
	"github.com/evanhutnik/mapnav/internal/types"
	"go.uber.org/zap"
)

const (
	MsgMissingInput = "Please enter both a starting point and a destination."
	MsgNoRoute      = "No route found between these locations."
	MsgFailed       = "Failed to navigate. Please try again."
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrUpstream   = errors.New("upstream failure")
)

type API interface {
	Navigate(ctx context.Context, start, destination string) (*backend.NavigateBody, error)
}

type Map interface {
	ClearRoute()
	ShowRoute(ctx context.Context, start, end types.Coordinate) error
}

// Display shows the trip summary beneath the map.
type Display interface {
	ShowTrip(distance, duration string)
}

type Notifier interface {
	Notify(msg string)
}

// Error is a failed navigation. Error() is the message shown to the user;
// errors.Is matches one of ErrValidation, ErrNotFound or ErrUpstream.
type Error struct {
	Msg  string
	kind error
	err  error
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.err}
}

type Option func(*Flow)

func NotifierOption(n Notifier) Option {
	return func(f *Flow) {
		f.notifier = n
	}
}

func DisplayOption(d Display) Option {
	return func(f *Flow) {
		f.display = d
	}
}

func LoggerOption(l *zap.SugaredLogger) Option {
	return func(f *Flow) {
		f.Logger = l
	}
}

type Flow struct {
	api      API
	mapView  Map
	display  Display
	notifier Notifier
	Logger   *zap.SugaredLogger
}

func New(api API, mapView Map, opts ...Option) *Flow {
	if api == nil {
		panic("Missing api in navigation flow")
	}
	if mapView == nil {
		panic("Missing map in navigation flow")
	}
	f := &Flow{api: api, mapView: mapView, Logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Navigate fetches and draws the driving route between two addresses. Any
// previous route is removed first; on failure none is drawn.
func (f *Flow) Navigate(ctx context.Context, start, destination string) (*types.RouteResult, error) {
	res, err := f.navigate(ctx, start, destination)
	if err != nil {
		var navErr *Error
		if errors.As(err, &navErr) && f.notifier != nil {
			f.notifier.Notify(navErr.Msg)
		}
		return nil, err
	}
	return res, nil
}

func (f *Flow) navigate(ctx context.Context, start, destination string) (*types.RouteResult, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(destination) == "" {
		return nil, &Error{Msg: MsgMissingInput, kind: ErrValidation}
	}

	f.mapView.ClearRoute()

	body, err := f.api.Navigate(ctx, start, destination)
	if err != nil {
		return nil, f.classify(err, start, destination)
	}

	res, err := routeResult(body)
	if err != nil {
		f.Logger.Errorw(err.Error(), "start", start, "destination", destination)
		return nil, &Error{Msg: MsgFailed, kind: ErrUpstream, err: err}
	}

	if err := f.mapView.ShowRoute(ctx, res.Start, res.End); err != nil {
		f.Logger.Errorw(err.Error(), "start", start, "destination", destination)
		return nil, &Error{Msg: MsgFailed, kind: ErrUpstream, err: err}
	}
	if f.display != nil {
		f.display.ShowTrip(res.DistanceText, res.DurationText)
	}
	return res, nil
}

func (f *Flow) classify(err error, start, destination string) error {
	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case http.StatusBadRequest:
			msg := statusErr.Message
			if msg == "" {
				msg = MsgFailed
			}
			return &Error{Msg: msg, kind: ErrNotFound, err: err}
		case http.StatusNotFound:
			return &Error{Msg: MsgNoRoute, kind: ErrNotFound, err: err}
		}
	}
	f.Logger.Errorw(err.Error(), "start", start, "destination", destination)
	return &Error{Msg: MsgFailed, kind: ErrUpstream, err: err}
}

func routeResult(body *backend.NavigateBody) (*types.RouteResult, error) {
	if body == nil || body.Route == nil {
		return nil, errors.New("route not found in response")
	}
	r := body.Route
	if r.StartLocation == nil || r.EndLocation == nil {
		return nil, errors.New("route endpoints missing in response")
	}
	if r.Distance == nil || r.Duration == nil || r.Distance.Text == "" || r.Duration.Text == "" {
		return nil, errors.New("route distance or duration missing in response")
	}
	return &types.RouteResult{
		Start:        *r.StartLocation,
		End:          *r.EndLocation,
		DistanceText: r.Distance.Text,
		DurationText: r.Duration.Text,
	}, nil
}
