// Package input models the two address boxes of the page.
package input

import (
	"sync"

	"github.com/evanhutnik/mapnav/internal/types"
)

type State int

const (
	Empty State = iota
	Typing
	MyLocationSelected
	PlaceSelected
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Typing:
		return "typing"
	case MyLocationSelected:
		return "my-location"
	case PlaceSelected:
		return "place"
	}
	return "unknown"
}

type ID string

const (
	Start       ID = "start-input"
	Destination ID = "destination-input"
)

const MyLocationText = "My Location"

// Field is safe for concurrent use.
type Field struct {
	id          ID
	placeholder string

	mu         sync.Mutex
	value      string
	state      State
	styled     bool
	myLocation *types.Coordinate
}

func NewField(id ID, placeholder string) *Field {
	return &Field{id: id, placeholder: placeholder}
}

func (f *Field) ID() ID {
	return f.id
}

func (f *Field) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *Field) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Field) Placeholder() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.styled {
		return MyLocationText
	}
	return f.placeholder
}

func (f *Field) MyLocationStyled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.styled
}

// Edit applies a keystroke. value is the box content after the edit and
// inserted the text the keystroke added. On a My-Location field the
// affordance is dropped and only inserted survives. Returns the new value.
func (f *Field) Edit(value, inserted string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.styled {
		f.styled = false
		f.myLocation = nil
		value = inserted
	}
	f.setLocked(value)
	return f.value
}

// SetValue replaces the content programmatically, keeping any styling.
func (f *Field) SetValue(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setLocked(value)
}

func (f *Field) setLocked(value string) {
	f.value = value
	if value == "" {
		f.state = Empty
	} else {
		f.state = Typing
	}
}

func (f *Field) SelectPlace(label string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.styled = false
	f.myLocation = nil
	f.value = label
	f.state = PlaceSelected
}

func (f *Field) ApplyMyLocationStyling() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.styled = true
	f.myLocation = nil
	f.value = MyLocationText
	f.state = MyLocationSelected
}

func (f *Field) ClearMyLocationStyling() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.styled {
		return
	}
	f.styled = false
	f.myLocation = nil
	f.value = ""
	f.state = Empty
}

// SetMyLocation records where "My Location" resolved to. Ignored if the
// styling was dropped in the meantime.
func (f *Field) SetMyLocation(c types.Coordinate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.styled {
		f.myLocation = &c
	}
}

// Query is the text sent to the server for this field. A resolved
// My-Location field sends its coordinate.
func (f *Field) Query() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.styled && f.myLocation != nil {
		return f.myLocation.String()
	}
	return f.value
}

type snapshot struct {
	value      string
	state      State
	styled     bool
	myLocation *types.Coordinate
}

func (f *Field) snapshot() snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return snapshot{f.value, f.state, f.styled, f.myLocation}
}

func (f *Field) restore(s snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value, f.state, f.styled, f.myLocation = s.value, s.state, s.styled, s.myLocation
}

// Swap exchanges the content and state of two fields.
func Swap(a, b *Field) {
	sa, sb := a.snapshot(), b.snapshot()
	a.restore(sb)
	b.restore(sa)
}
