package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ligoview/ligoview/internal/chartdata"
	"github.com/ligoview/ligoview/internal/logging"
	"github.com/marusama/semaphore/v2"
)

var (
	// ErrBackend is returned when the metrics server reports an error
	// in its response envelope.
	ErrBackend = errors.New("metrics backend error")
	// ErrStatus is returned for non-2xx responses.
	ErrStatus = errors.New("unexpected status")
)

// Fetcher runs a metrics query.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*chartdata.Response, error)
}

type Client struct {
	baseURL string
	http    *http.Client
	sem     semaphore.Semaphore
}

// NewClient returns a client for the metrics server at baseURL that keeps
// at most maxInFlight requests open at once.
func NewClient(baseURL string, maxInFlight int, timeout time.Duration) *Client {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		sem:     semaphore.New(maxInFlight),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Fetch(ctx context.Context, req Request) (*chartdata.Response, error) {
	payload, err := c.get(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp chartdata.Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", req.Path, err)
	}
	return &resp, nil
}

// ListMetricSets returns the names of the metrics definitions the server knows.
func (c *Client) ListMetricSets(ctx context.Context) ([]string, error) {
	req := ListMetricSetsRequest()
	payload, err := c.get(ctx, req)
	if err != nil {
		return nil, err
	}

	var sets []string
	if err := json.Unmarshal(payload, &sets); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", req.Path, err)
	}
	return sets, nil
}

func (c *Client) get(ctx context.Context, req Request) (json.RawMessage, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	target := c.baseURL + req.String()
	reqID := uuid.NewString()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", req.Path, err)
	}

	logging.Logger.Debugw("backend request",
		"id", reqID,
		"url", target,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GET %s returned %d", ErrStatus, req.Path, resp.StatusCode)
	}

	return unwrap(body)
}

// unwrap strips the {ERROR, STUFF} envelope the metrics server puts
// around most responses. Bare payloads are returned unchanged.
func unwrap(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed, nil
	}

	var env struct {
		ERROR *string         `json:"ERROR"`
		STUFF json.RawMessage `json:"STUFF"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if env.ERROR != nil {
		return nil, fmt.Errorf("%w: %s", ErrBackend, *env.ERROR)
	}
	if len(env.STUFF) > 0 && string(env.STUFF) != "null" {
		return env.STUFF, nil
	}
	return trimmed, nil
}
