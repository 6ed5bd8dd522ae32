// Package mltransport is the HTTP plumbing shared by calls to the model
// sidecar: JSON posts, bounded response reads and the health probe.
package mltransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	infraerrors "github.com/jonesrussell/north-cloud/triage/infrastructure/errors"
	infrahttp "github.com/jonesrussell/north-cloud/triage/infrastructure/http"
)

// MaxResponseBytes caps how much of a sidecar response is decoded.
const MaxResponseBytes = 1 << 20

// Transport talks to one sidecar base URL.
type Transport struct {
	baseURL string
	client  *http.Client
}

// New returns a Transport. A nil client gets one with the default timeout.
func New(baseURL string, client *http.Client) *Transport {
	if client == nil {
		client = infrahttp.NewClient(infrahttp.ClientConfig{})
	}
	return &Transport{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// BaseURL returns the sidecar root without a trailing slash.
func (t *Transport) BaseURL() string {
	return t.baseURL
}

// PostJSON sends req as JSON to path and decodes a 2xx response into
// respPtr. Non-2xx statuses come back as *errors.HTTPError.
func (t *Transport) PostJSON(ctx context.Context, path string, req, respPtr any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if httpErr := infraerrors.ParseHTTPError(resp); httpErr != nil {
		return fmt.Errorf("%s: %w", path, httpErr)
	}

	if decodeErr := json.NewDecoder(io.LimitReader(resp.Body, MaxResponseBytes)).Decode(respPtr); decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	return nil
}

// Health is the result of one GET /health probe.
type Health struct {
	Reachable    bool
	Status       string
	ModelVersion string
	Latency      time.Duration
}

type healthResponse struct {
	Status       string `json:"status"`
	ModelVersion string `json:"model_version"`
}

// DoHealth calls GET /health. The body is optional; a 200 with no JSON is
// still reachable.
func (t *Transport) DoHealth(ctx context.Context) (Health, error) {
	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/health", http.NoBody)
	if err != nil {
		return Health{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := t.client.Do(httpReq)
	h := Health{Latency: time.Since(start)}
	if err != nil {
		return h, fmt.Errorf("service unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if httpErr := infraerrors.ParseHTTPError(resp); httpErr != nil {
		return h, fmt.Errorf("unhealthy: %w", httpErr)
	}

	h.Reachable = true
	var body healthResponse
	if json.NewDecoder(io.LimitReader(resp.Body, MaxResponseBytes)).Decode(&body) == nil {
		h.Status = body.Status
		h.ModelVersion = body.ModelVersion
	}
	return h, nil
}
