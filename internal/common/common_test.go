package common

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWithRetry_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := GetWithRetry(srv.Client(), req, "test", DefaultAttempts)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetWithRetry_GivesUp(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	_, err := GetWithRetry(srv.Client(), req, "test", 2)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetWithRetry_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	_, err := GetWithRetry(srv.Client(), req, "test", DefaultAttempts)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetWithRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://127.0.0.1:1", nil)
	_, err := GetWithRetry(nil, req, "test", DefaultAttempts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDistanceText(t *testing.T) {
	cases := map[float64]string{
		0:      "0 m",
		849.6:  "850 m",
		5200:   "5.2 km",
		12345:  "12.3 km",
		154000: "154 km",
	}
	for in, want := range cases {
		assert.Equal(t, want, DistanceText(in), "meters=%v", in)
	}
}

func TestDurationText(t *testing.T) {
	cases := map[time.Duration]string{
		20 * time.Second:              "1 min",
		time.Minute:                   "1 min",
		12 * time.Minute:              "12 mins",
		time.Hour:                     "1 hour",
		65 * time.Minute:              "1 hour 5 mins",
		2*time.Hour + time.Minute:     "2 hours 1 min",
		26 * time.Hour:                "1 day 2 hours",
		48*time.Hour + 10*time.Minute: "2 days",
	}
	for in, want := range cases {
		assert.Equal(t, want, DurationText(in), "duration=%v", in)
	}
}
