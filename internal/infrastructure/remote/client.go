// Package remote is the HTTP client for the central warehouse API. It
// maps transport failures and API rejections onto domain errors so the
// gate can tell a connectivity problem from a business rejection.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"warenbuchung/internal/core/apperror"
)

// insufficientStockMarker is the substring the API places in the 400
// body when a goods-out exceeds available stock. Matched verbatim.
const insufficientStockMarker = "Insufficient stock quantity"

// TokenSource supplies the current bearer token, empty when signed out.
type TokenSource interface {
	Token() string
}

// Client talks to the warehouse API. One instance serves all endpoint
// groups.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient creates an API client. baseURL carries no trailing slash.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// do runs one request. body and out may be nil; out receives the
// decoded JSON response. An explicit token overrides the token source
// (used by Me during login before the session is stored).
func (c *Client) do(ctx context.Context, method, path string, body, out any, token string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token == "" && c.tokens != nil {
		token = c.tokens.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return mapStatus(resp.StatusCode, raw, path)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// mapStatus converts an API rejection into a domain error. The stock
// rejection is recognized before generic validation so it keeps its
// distinct code.
func mapStatus(status int, body []byte, path string) error {
	msg := strings.TrimSpace(string(body))
	switch {
	case status == http.StatusBadRequest && strings.Contains(msg, insufficientStockMarker):
		return apperror.NewBusinessRule(apperror.CodeInsufficientStock, msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperror.NewUnauthorized("remote rejected credentials")
	case status == http.StatusNotFound:
		return apperror.NewNotFound("resource", path)
	case status == http.StatusBadRequest:
		if msg == "" {
			msg = "request rejected"
		}
		return apperror.NewValidation(msg)
	default:
		return apperror.NewInternal(fmt.Errorf("remote returned %d: %s", status, msg))
	}
}

// Ping probes connectivity against the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.do(ctx, http.MethodGet, "/health", nil, nil, "")
}
