// Package recommendation talks to the external service that ranks practice
// problems for a preparation window.
package recommendation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"alumni-prep-backend/internal/domain"
)

const maxErrorBody = 512

type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient posts to endpoint; every call is bounded by timeout.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("recommendation service returned %d: %s", e.StatusCode, e.Body)
}

func (c *Client) Generate(ctx context.Context, req domain.PreparationRequest) ([]domain.PracticeListItem, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.MarkTimeout(fmt.Errorf("call recommendation service: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var items []domain.PracticeListItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, domain.MarkTimeout(fmt.Errorf("decode recommendation response: %w", err))
	}
	if items == nil {
		// JSON null
		return nil, fmt.Errorf("decode recommendation response: expected a list")
	}
	return items, nil
}
