package types

import (
	"fmt"
	"github.com/google/uuid"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// String formats the coordinate as "lat,lng", the form routing providers accept.
func (c Coordinate) String() string {
	return fmt.Sprintf("%f,%f", c.Lat, c.Lng)
}

type Trip struct {
	From Coordinate
	To   Coordinate
}

// Measure is a human readable quantity paired with its raw value
// (meters for distances, seconds for durations).
type Measure struct {
	Text  string `json:"text"`
	Value int64  `json:"value"`
}

type Route struct {
	StartLocation Coordinate `json:"start_location"`
	EndLocation   Coordinate `json:"end_location"`
	Distance      Measure    `json:"distance"`
	Duration      Measure    `json:"duration"`
}

type Prediction struct {
	ID            string `json:"id"`
	MainText      string `json:"main_text"`
	SecondaryText string `json:"secondary_text"`
}

// Label is the text an input shows once the prediction is picked.
func (p Prediction) Label() string {
	return p.MainText + " " + p.SecondaryText
}

type RouteResult struct {
	Start        Coordinate
	End          Coordinate
	DistanceText string
	DurationText string
}

// SessionToken groups the autocomplete lookups of one typing burst.
// The zero value means no session.
type SessionToken uuid.UUID

func NewSessionToken() SessionToken {
	return SessionToken(uuid.New())
}

func (t SessionToken) IsZero() bool {
	return t == SessionToken(uuid.Nil)
}

func (t SessionToken) String() string {
	if t.IsZero() {
		return ""
	}
	return uuid.UUID(t).String()
}

func ParseSessionToken(s string) (SessionToken, error) {
	if s == "" {
		return SessionToken{}, nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return SessionToken{}, fmt.Errorf("invalid session token %q: %w", s, err)
	}
	return SessionToken(u), nil
}
