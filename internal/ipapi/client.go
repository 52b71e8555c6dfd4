// Package ipapi locates the caller by public IP address through ipapi.co.
package ipapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/evanhutnik/mapnav/internal/common"
	"github.com/evanhutnik/mapnav/internal/types"
)

const DefaultBaseUrl = "https://ipapi.co"

var ErrNoLocation = errors.New("ipapi returned no location")

type lookupResponse struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Error     bool     `json:"error"`
	Reason    string   `json:"reason"`
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
	c := &Client{
		baseUrl: DefaultBaseUrl,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Locate returns the approximate coordinate of the machine making the request.
func (c *Client) Locate(ctx context.Context) (types.Coordinate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseUrl+"/json/", nil)
	if err != nil {
		return types.Coordinate{}, err
	}
	resp, err := common.GetWithRetry(c.http, req, "ipapi", 1)
	if err != nil {
		return types.Coordinate{}, err
	}
	defer resp.Body.Close()

	var respObj lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&respObj); err != nil {
		return types.Coordinate{}, fmt.Errorf("error unmarshalling response from ipapi: %w", err)
	}
	if respObj.Error {
		return types.Coordinate{}, fmt.Errorf("%w: %s", ErrNoLocation, respObj.Reason)
	}
	if respObj.Latitude == nil || respObj.Longitude == nil {
		return types.Coordinate{}, ErrNoLocation
	}
	return types.Coordinate{Lat: *respObj.Latitude, Lng: *respObj.Longitude}, nil
}
