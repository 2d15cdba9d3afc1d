package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"deca/pkg/model"
)

const (
	SubmissionsPath = "/api/v1/submissions"
	PreviewPath     = "/api/v1/submissions/preview"
	APIKeyHeader    = "x-api-key"
)

// IntakeClient talks to a running intake service.
type IntakeClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewIntakeClient(baseURL, apiKey string) *IntakeClient {
	return &IntakeClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type envelopeResponse struct {
	Data *model.Envelope `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("intake returned %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Submit posts payload for processing. idempotencyKey may be empty.
func (c *IntakeClient) Submit(ctx context.Context, payload map[string]any, idempotencyKey string) (*model.Envelope, error) {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}
	return c.post(ctx, SubmissionsPath, payload, headers)
}

// Preview runs the pipeline remotely without storing anything.
func (c *IntakeClient) Preview(ctx context.Context, payload map[string]any) (*model.Envelope, error) {
	return c.post(ctx, PreviewPath, payload, nil)
}

func (c *IntakeClient) post(ctx context.Context, path string, payload map[string]any, headers map[string]string) (*model.Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set(APIKeyHeader, c.APIKey)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errorResponse
		_ = json.Unmarshal(respBody, &errResp)
		return nil, &StatusError{StatusCode: resp.StatusCode, Code: errResp.Code, Message: errResp.Error}
	}

	var out envelopeResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if out.Data == nil {
		return nil, fmt.Errorf("response has no data")
	}
	return out.Data, nil
}

// WaitForHealthy polls /health until it answers 200 or maxWait elapses.
func (c *IntakeClient) WaitForHealthy(ctx context.Context, maxWait time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
		if err != nil {
			return err
		}
		resp, err := c.HTTPClient.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("service did not become healthy within %v", maxWait)
		case <-ticker.C:
		}
	}
}
