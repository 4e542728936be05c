// Package remote is a thin HTTP client for the Supabase REST (PostgREST)
// backend. It knows how to upsert row batches and select filtered rows;
// row shapes and field mapping belong to the syncer package.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Environment variables holding the backend credentials.
const (
	EnvURL = "SKEIN_SUPABASE_URL"
	EnvKey = "SKEIN_SUPABASE_KEY"
)

// Client issues authenticated requests against a Supabase project's REST
// endpoint.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient creates a client for the given Supabase project URL and API key.
func NewClient(baseURL, apiKey string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL cannot be empty")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey cannot be empty")
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// FromEnv creates a client from the SKEIN_SUPABASE_URL and
// SKEIN_SUPABASE_KEY environment variables.
func FromEnv() (*Client, error) {
	baseURL := os.Getenv(EnvURL)
	if baseURL == "" {
		return nil, fmt.Errorf("%s environment variable not set", EnvURL)
	}
	apiKey := os.Getenv(EnvKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable not set", EnvKey)
	}
	return NewClient(baseURL, apiKey)
}

// Upsert inserts-or-replaces a batch of rows in table, keyed on the id
// column. rows must marshal to a JSON array.
func (c *Client) Upsert(ctx context.Context, table string, rows interface{}) error {
	body, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal rows: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s?on_conflict=id", c.baseURL, table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Prefer", "resolution=merge-duplicates,return=minimal")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upsert %s failed (status %d): %s", table, resp.StatusCode, string(msg))
	}
	return nil
}

// Select fetches rows from table matching the given PostgREST filters
// (e.g. user_id=eq.<uid>) and decodes the response array into dest.
func (c *Client) Select(ctx context.Context, table string, filters url.Values, dest interface{}) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	if len(filters) > 0 {
		endpoint += "?" + filters.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("select %s failed (status %d): %s", table, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}
