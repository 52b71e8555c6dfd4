package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/evanhutnik/mapnav/internal/common"
	t "github.com/evanhutnik/mapnav/internal/types"
	"net/http"
	"net/url"
	"time"
)

type Response struct {
	Code    string  `json:"code"`
	Message string  `json:"message,omitempty"`
	Routes  []Route `json:"routes"`
}

type Route struct {
	Duration float64 `json:"duration"`
	Distance float64 `json:"distance"`
	Legs     []Leg   `json:"legs"`
}

type Leg struct {
	Summary  string  `json:"summary"`
	Duration float64 `json:"duration"`
	Distance float64 `json:"distance"`
}

type ClientOption func(*Client)

type Client struct {
	baseUrl string
	http    *http.Client
}

func BaseUrlOption(baseUrl string) ClientOption {
	return func(c *Client) {
		c.baseUrl = baseUrl
	}
}

func HTTPClientOption(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

func New(opts ...ClientOption) *Client {
	c := &Client{
		http: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.baseUrl == "" {
		panic("Missing baseUrl in osrm client")
	}
	return c
}

// Route asks the driving profile behind baseUrl for a route between the two
// points of trip. It returns nil, nil when OSRM finds no route.
func (c *Client) Route(ctx context.Context, trip t.Trip) (*t.Route, error) {
	reqUrl := fmt.Sprintf("%v/%f,%f;%f,%f", c.baseUrl, trip.From.Lng, trip.From.Lat, trip.To.Lng, trip.To.Lat)
	req, err := url.Parse(reqUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse osrm url %s: %w", reqUrl, err)
	}

	q := req.Query()
	q.Add("steps", "false")
	q.Add("overview", "false")
	req.RawQuery = q.Encode()

	ctxReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := common.GetWithRetry(c.http, ctxReq, "osrm", common.DefaultAttempts)
	if err != nil {
		var statusErr *common.StatusError
		// OSRM answers 400 with code NoRoute for unreachable pairs.
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusBadRequest {
			return nil, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	var respObj Response
	if err := json.NewDecoder(resp.Body).Decode(&respObj); err != nil {
		return nil, fmt.Errorf("error unmarshalling response from osrm: %w", err)
	}

	switch respObj.Code {
	case "Ok":
	case "NoRoute", "NoSegment":
		return nil, nil
	default:
		return nil, fmt.Errorf("osrm returned %s: %s", respObj.Code, respObj.Message)
	}
	if len(respObj.Routes) == 0 || len(respObj.Routes[0].Legs) == 0 {
		return nil, nil
	}

	leg := respObj.Routes[0].Legs[0]
	return &t.Route{
		StartLocation: trip.From,
		EndLocation:   trip.To,
		Distance: t.Measure{
			Text:  common.DistanceText(leg.Distance),
			Value: int64(leg.Distance),
		},
		Duration: t.Measure{
			Text:  common.DurationText(time.Duration(leg.Duration * float64(time.Second))),
			Value: int64(leg.Duration),
		},
	}, nil
}
