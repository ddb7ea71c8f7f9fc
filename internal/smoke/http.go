package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Request-ID", "smoke-"+uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// checkHealth verifies the service is up. Any 200 counts; the body is the
// Prometheus exposition.
func (c *HTTPClient) checkHealth(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrUnexpectedStatus, status)
	}
	return nil
}

// clearCache empties the service cache and returns how many entries went.
func (c *HTTPClient) clearCache(ctx context.Context) (int, error) {
	status, data, err := c.do(ctx, http.MethodDelete, "/nfl/cache", nil)
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("%w: cache clear status %d", ErrUnexpectedStatus, status)
	}
	var resp struct {
		Cleared int `json:"cleared"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, fmt.Errorf("failed to decode cache clear response: %w", err)
	}
	return resp.Cleared, nil
}

// ask posts one question.
func (c *HTTPClient) ask(ctx context.Context, question string) (int, Answer, error) {
	var ans Answer
	status, data, err := c.do(ctx, http.MethodPost, "/nfl/query", QueryRequest{Query: question})
	if err != nil {
		return status, ans, err
	}
	if status != http.StatusOK {
		return status, ans, fmt.Errorf("%w: query status %d: %s", ErrUnexpectedStatus, status, bytes.TrimSpace(data))
	}
	if err := json.Unmarshal(data, &ans); err != nil {
		return status, ans, fmt.Errorf("failed to decode answer: %w", err)
	}
	return status, ans, nil
}
