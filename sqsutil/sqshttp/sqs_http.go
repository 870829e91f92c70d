package sqshttp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// StatusError is returned when the server responds with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("request to (%s) failed with status (%d): %s", e.URL, e.StatusCode, e.Body)
}

// maxErrorBodyLen bounds the response body echoed in StatusError.
const maxErrorBodyLen = 256

// Get makes a GET request to the given URL and endpoint and unmarshals the response body into the given type.
func Get[k any](ctx context.Context, client *http.Client, url, endpoint string) (*k, error) {
	body, err := GetBytes(ctx, client, url, endpoint)
	if err != nil {
		return nil, err
	}

	// Unmarshal the response body
	var unmarshalledData k
	if err := json.Unmarshal(body, &unmarshalledData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal: %w", err)
	}

	return &unmarshalledData, nil
}

// GetBytes makes a GET request to the given URL and endpoint and returns the raw response body.
func GetBytes(ctx context.Context, client *http.Client, url, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Read the response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if len(body) > maxErrorBodyLen {
			body = body[:maxErrorBodyLen]
		}
		return nil, StatusError{URL: url + endpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
