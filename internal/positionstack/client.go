package positionstack

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/evanhutnik/mapnav/internal/common"
	t "github.com/evanhutnik/mapnav/internal/types"
	"net/http"
	"net/url"
	"time"
)

type forwardResponse struct {
	Data []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Label     string  `json:"label"`
	} `json:"data"`
}

type ClientOption func(*Client)

func ApiKeyOption(apiKey string) ClientOption {
	return func(c *Client) {
		c.apiKey = apiKey
	}
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

type Client struct {
	apiKey  string
	baseUrl string
	http    *http.Client
}

func New(opts ...ClientOption) *Client {
	c := &Client{
		http: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		panic("Missing apikey in positionStack client")
	}
	if c.baseUrl == "" {
		panic("Missing baseUrl in positionStack client")
	}
	return c
}

// Geocode resolves a free-text address to its best match. A nil coordinate
// with a nil error means the address is unknown to positionstack.
func (c *Client) Geocode(ctx context.Context, address string) (*t.Coordinate, error) {
	req, err := url.Parse(fmt.Sprintf("%v/forward", c.baseUrl))
	if err != nil {
		return nil, fmt.Errorf("failed to parse positionstack baseUrl %s: %w", c.baseUrl, err)
	}

	q := req.Query()
	q.Add("access_key", c.apiKey)
	q.Add("query", address)
	q.Add("limit", "1")
	req.RawQuery = q.Encode()

	ctxReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := common.GetWithRetry(c.http, ctxReq, "positionstack", common.DefaultAttempts)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var respObj forwardResponse
	if err := json.NewDecoder(resp.Body).Decode(&respObj); err != nil {
		return nil, fmt.Errorf("error unmarshalling response from positionstack: %w", err)
	}
	if len(respObj.Data) == 0 {
		return nil, nil
	}
	return &t.Coordinate{
		Lat: respObj.Data[0].Latitude,
		Lng: respObj.Data[0].Longitude,
	}, nil
}
