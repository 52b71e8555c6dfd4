package common

import (
	"fmt"
	"io"
	"net/http"
)

const DefaultAttempts = 3

// GetWithRetry sends req up to attempts times, retrying transport errors and
// 5xx answers. Other non-2xx answers fail at once with a StatusError. A
// cancelled request context stops the loop immediately.
// The caller owns the body of the returned response.
func GetWithRetry(client *http.Client, req *http.Request, name string, attempts int) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := req.Context().Err(); err != nil {
			return nil, fmt.Errorf("%v api request aborted: %w", name, err)
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("error on %v api request: %w", name, err)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = &StatusError{Name: name, Code: resp.StatusCode}
			if resp.StatusCode < 500 {
				return nil, lastErr
			}
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}

type StatusError struct {
	Name string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("error code %d returned from %v", e.Code, e.Name)
}
