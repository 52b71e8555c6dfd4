// Package autocomplete turns keystrokes in the two address boxes into
// debounced prediction lookups and drives the shared suggestion dropdown.
package autocomplete

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/evanhutnik/mapnav/internal/input"
	"github.com/evanhutnik/mapnav/internal/mapview"
	"github.com/evanhutnik/mapnav/internal/types"
	"go.uber.org/zap"
)

const (
	DefaultQuietPeriod   = 300 * time.Millisecond
	DefaultLookupTimeout = 5 * time.Second

	// DropdownTarget identifies the dropdown in PointerDown.
	DropdownTarget = "autocomplete-results"
)

var ErrNoSuchEntry = errors.New("no such dropdown entry")

type Provider interface {
	Predictions(ctx context.Context, input string, token types.SessionToken) ([]types.Prediction, error)
	PlaceLocation(ctx context.Context, placeID string, token types.SessionToken) (*types.Coordinate, error)
}

// Dropdown renders the suggestion list. It is called with the coordinator
// lock held and must not call back into the coordinator.
type Dropdown interface {
	Show(owner input.ID, entries []Entry)
	Hide()
}

// Map is the part of the map view the coordinator drives.
type Map interface {
	ApplyMyLocationStyling(f *input.Field)
	ResolveMyLocation(ctx context.Context) (types.Coordinate, error)
	Focus(location types.Coordinate, zoom int) error
}

// Entry is one dropdown row. The first row of every list is YourLocation.
type Entry struct {
	YourLocation bool
	Prediction   types.Prediction
}

func (e Entry) Label() string {
	if e.YourLocation {
		return "Your location"
	}
	return e.Prediction.Label()
}

type fieldState struct {
	field *input.Field
	gen   uint64
	timer *time.Timer
	token types.SessionToken
}

type Option func(*Coordinator)

func QuietPeriodOption(d time.Duration) Option {
	return func(c *Coordinator) {
		c.quietPeriod = d
	}
}

func LookupTimeoutOption(d time.Duration) Option {
	return func(c *Coordinator) {
		c.lookupTimeout = d
	}
}

func LoggerOption(l *zap.SugaredLogger) Option {
	return func(c *Coordinator) {
		c.Logger = l
	}
}

type Coordinator struct {
	provider      Provider
	dropdown      Dropdown
	mapView       Map
	quietPeriod   time.Duration
	lookupTimeout time.Duration
	Logger        *zap.SugaredLogger

	mu      sync.Mutex
	fields  map[input.ID]*fieldState
	owner   input.ID
	entries []Entry
}

func New(provider Provider, dropdown Dropdown, mapView Map, fields []*input.Field, opts ...Option) *Coordinator {
	if provider == nil {
		panic("Missing provider in autocomplete coordinator")
	}
	if dropdown == nil {
		panic("Missing dropdown in autocomplete coordinator")
	}
	if mapView == nil {
		panic("Missing map in autocomplete coordinator")
	}
	c := &Coordinator{
		provider:      provider,
		dropdown:      dropdown,
		mapView:       mapView,
		quietPeriod:   DefaultQuietPeriod,
		lookupTimeout: DefaultLookupTimeout,
		Logger:        zap.NewNop().Sugar(),
		fields:        make(map[input.ID]*fieldState, len(fields)),
	}
	for _, f := range fields {
		c.fields[f.ID()] = &fieldState{field: f}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Input handles a raw edit event: value is the box content after the edit,
// inserted the text the keystroke added.
func (c *Coordinator) Input(id input.ID, value, inserted string) {
	fs := c.field(id)
	if fs == nil {
		return
	}
	c.TextChanged(id, fs.field.Edit(value, inserted))
}

// TextChanged re-arms the field's debounce timer. Empty text ends the
// typing session without a lookup. New text replaces a My-Location field's
// affordance like a keystroke would.
func (c *Coordinator) TextChanged(id input.ID, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fs := c.fields[id]
	if fs == nil {
		return
	}
	if fs.field.Value() != text {
		text = fs.field.Edit(text, text)
	}
	c.cancelPendingLocked(fs)

	if text == "" {
		fs.token = types.SessionToken{}
		if c.owner == id {
			c.hideLocked()
		}
		return
	}

	if fs.token.IsZero() {
		fs.token = types.NewSessionToken()
	}
	gen := fs.gen
	fs.timer = time.AfterFunc(c.quietPeriod, func() {
		c.lookup(id, gen)
	})
}

func (c *Coordinator) cancelPendingLocked(fs *fieldState) {
	fs.gen++
	if fs.timer != nil {
		fs.timer.Stop()
		fs.timer = nil
	}
}

func (c *Coordinator) lookup(id input.ID, gen uint64) {
	c.mu.Lock()
	fs := c.fields[id]
	if fs.gen != gen {
		c.mu.Unlock()
		return
	}
	fs.timer = nil
	text := fs.field.Value()
	token := fs.token
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.lookupTimeout)
	defer cancel()
	preds, err := c.provider.Predictions(ctx, text, token)
	c.predictionsReceived(id, preds, text, err)
}

func (c *Coordinator) predictionsReceived(id input.ID, preds []types.Prediction, requestText string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fs := c.fields[id]
	if fs.field.Value() != requestText {
		c.Logger.Debugw("discarding stale predictions", "field", id, "request", requestText)
		return
	}
	if err != nil {
		c.Logger.Errorw(err.Error(), "field", id, "input", requestText)
	}
	if err != nil || len(preds) == 0 {
		if c.owner == id {
			c.hideLocked()
		}
		return
	}

	entries := make([]Entry, 0, len(preds)+1)
	entries = append(entries, Entry{YourLocation: true})
	for _, p := range preds {
		entries = append(entries, Entry{Prediction: p})
	}
	c.owner = id
	c.entries = entries
	c.dropdown.Show(id, entries)
}

func (c *Coordinator) hideLocked() {
	c.owner = ""
	c.entries = nil
	c.dropdown.Hide()
}

// Select acts on a dropdown row of field id. Index 0 is "Your location".
func (c *Coordinator) Select(ctx context.Context, id input.ID, index int) error {
	c.mu.Lock()
	fs := c.fields[id]
	if fs == nil || c.owner != id || index < 0 || index >= len(c.entries) {
		c.mu.Unlock()
		return fmt.Errorf("%w: field %s row %d", ErrNoSuchEntry, id, index)
	}
	entry := c.entries[index]
	token := fs.token
	fs.token = types.SessionToken{}
	c.cancelPendingLocked(fs)
	c.hideLocked()

	if entry.YourLocation {
		c.mapView.ApplyMyLocationStyling(fs.field)
		c.mu.Unlock()

		loc, err := c.mapView.ResolveMyLocation(ctx)
		if err != nil {
			return err
		}
		fs.field.SetMyLocation(loc)
		return nil
	}

	fs.field.SelectPlace(entry.Prediction.Label())
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.lookupTimeout)
	defer cancel()
	loc, err := c.provider.PlaceLocation(ctx, entry.Prediction.ID, token)
	if err != nil {
		c.Logger.Errorw(err.Error(), "place_id", entry.Prediction.ID)
		return &mapview.UserError{Msg: "No location details available for this place.", Err: err}
	}
	if loc == nil {
		return &mapview.UserError{Msg: "No location details available for this place."}
	}
	return c.mapView.Focus(*loc, mapview.PlaceZoom)
}

// PointerDown hides the dropdown when the press lands outside both inputs
// and the dropdown itself. Lookups already in flight keep running.
func (c *Coordinator) PointerDown(target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if target == DropdownTarget {
		return
	}
	if _, ok := c.fields[input.ID(target)]; ok {
		return
	}
	if c.owner != "" {
		c.hideLocked()
	}
}

// Visible reports the field owning the dropdown and its rows; an empty
// owner means the dropdown is hidden.
func (c *Coordinator) Visible() (input.ID, []Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owner, append([]Entry(nil), c.entries...)
}

func (c *Coordinator) SessionToken(id input.ID) types.SessionToken {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fs := c.fields[id]; fs != nil {
		return fs.token
	}
	return types.SessionToken{}
}

// Reset ends the typing session of a field whose text was replaced
// outside the keyboard path, e.g. by swapping the two inputs.
func (c *Coordinator) Reset(id input.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fs := c.fields[id]; fs != nil {
		c.cancelPendingLocked(fs)
		fs.token = types.SessionToken{}
		if c.owner == id {
			c.hideLocked()
		}
	}
}

func (c *Coordinator) field(id input.ID) *fieldState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields[id]
}
