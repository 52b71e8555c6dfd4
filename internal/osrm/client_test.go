package osrm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	t "github.com/evanhutnik/mapnav/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trip = t.Trip{
	From: t.Coordinate{Lat: 37.4224, Lng: -122.0842},
	To:   t.Coordinate{Lat: 37.7906, Lng: -122.3896},
}

func TestRoute(tt *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(tt, "/route/v1/driving/-122.084200,37.422400;-122.389600,37.790600", r.URL.Path)
		assert.Equal(tt, "false", r.URL.Query().Get("overview"))
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"distance":57120.4,"duration":2690,"legs":[{"distance":57120.4,"duration":2690}]}]}`))
	}))
	defer srv.Close()

	c := New(BaseUrlOption(srv.URL + "/route/v1/driving"))
	route, err := c.Route(context.Background(), trip)
	require.NoError(tt, err)
	require.NotNil(tt, route)

	assert.Equal(tt, trip.From, route.StartLocation)
	assert.Equal(tt, trip.To, route.EndLocation)
	assert.Equal(tt, "57.1 km", route.Distance.Text)
	assert.Equal(tt, int64(57120), route.Distance.Value)
	assert.Equal(tt, "45 mins", route.Duration.Text)
	assert.Equal(tt, int64(2690), route.Duration.Value)
}

func TestRoute_NoRoute(tt *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"NoRoute","message":"Impossible route between points"}`))
	}))
	defer srv.Close()

	c := New(BaseUrlOption(srv.URL))
	route, err := c.Route(context.Background(), trip)
	require.NoError(tt, err)
	assert.Nil(tt, route)
	assert.Equal(tt, int32(1), atomic.LoadInt32(&calls), "a NoRoute answer is not retried")
}

func TestRoute_UpstreamFailure(tt *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(BaseUrlOption(srv.URL))
	_, err := c.Route(context.Background(), trip)
	assert.Error(tt, err)
}
