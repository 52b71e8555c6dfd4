// Package backend is the page-side client of the mapnav HTTP API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/evanhutnik/mapnav/internal/types"
)

// StatusError is returned for any non-2xx answer. Message is the plain-text
// body the server sent.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mapnav api returned %d: %s", e.Code, e.Message)
}

// RouteBody mirrors the route object of POST /api/navigate. Fields are
// pointers so callers can tell a missing field from a zero value.
type RouteBody struct {
	StartLocation *types.Coordinate `json:"start_location"`
	EndLocation   *types.Coordinate `json:"end_location"`
	Distance      *types.Measure    `json:"distance"`
	Duration      *types.Measure    `json:"duration"`
}

type NavigateBody struct {
	Route *RouteBody `json:"route"`
}

type ClientOption func(*Client)

func BaseUrlOption(baseUrl string) ClientOption {
	return func(c *Client) {
		c.baseUrl = strings.TrimRight(baseUrl, "/")
	}
}

func HTTPClientOption(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

type Client struct {
	baseUrl string
	http    *http.Client
}

func New(opts ...ClientOption) *Client {
	c := &Client{http: &http.Client{Timeout: 15 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	if c.baseUrl == "" {
		panic("Missing baseUrl in backend client")
	}
	return c
}

func (c *Client) RandomLocation(ctx context.Context) (types.Coordinate, error) {
	var coord types.Coordinate
	err := c.do(ctx, http.MethodGet, "/api/random-location", nil, nil, &coord)
	return coord, err
}

// ScriptUrl fetches the Maps JavaScript loader URL.
func (c *Client) ScriptUrl(ctx context.Context) (string, error) {
	var body struct {
		ScriptUrl string `json:"scriptUrl"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/maps-credentials", nil, nil, &body); err != nil {
		return "", err
	}
	return body.ScriptUrl, nil
}

func (c *Client) Navigate(ctx context.Context, start, destination string) (*NavigateBody, error) {
	payload := map[string]string{"start": start, "destination": destination}
	var body NavigateBody
	if err := c.do(ctx, http.MethodPost, "/api/navigate", nil, payload, &body); err != nil {
		return nil, err
	}
	return &body, nil
}

func (c *Client) Geocode(ctx context.Context, address string) (*types.Coordinate, error) {
	var body struct {
		Location *types.Coordinate `json:"location"`
	}
	q := url.Values{"address": {address}}
	if err := c.do(ctx, http.MethodGet, "/api/geocode", q, nil, &body); err != nil {
		return nil, err
	}
	return body.Location, nil
}

func (c *Client) Predictions(ctx context.Context, input string, token types.SessionToken) ([]types.Prediction, error) {
	var body struct {
		Predictions []types.Prediction `json:"predictions"`
	}
	q := url.Values{"input": {input}}
	if !token.IsZero() {
		q.Set("session_token", token.String())
	}
	if err := c.do(ctx, http.MethodGet, "/api/autocomplete", q, nil, &body); err != nil {
		return nil, err
	}
	return body.Predictions, nil
}

func (c *Client) PlaceLocation(ctx context.Context, placeID string, token types.SessionToken) (*types.Coordinate, error) {
	var body struct {
		Location *types.Coordinate `json:"location"`
	}
	q := url.Values{"place_id": {placeID}}
	if !token.IsZero() {
		q.Set("session_token", token.String())
	}
	if err := c.do(ctx, http.MethodGet, "/api/place-details", q, nil, &body); err != nil {
		return nil, err
	}
	return body.Location, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out interface{}) error {
	target := c.baseUrl + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error on mapnav %s request: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error unmarshalling mapnav %s response: %w", path, err)
	}
	return nil
}
