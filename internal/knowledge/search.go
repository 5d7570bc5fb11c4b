// Package knowledge answers informational questions from the document
// corpus. Search is delegated to the external semantic-search service;
// answer generation is delegated to the completion service. This package
// never chunks or indexes documents itself.
package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Document is one search hit from the corpus.
type Document struct {
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
}

// Client queries the semantic-search service over HTTP.
type Client struct {
	endpoint   string
	tenantID   string
	httpClient *http.Client
}

// NewClient creates a search client for the given endpoint. tenantID is
// optional and sent as X-Scope-OrgID for multi-tenant setups.
func NewClient(endpoint, tenantID string) *Client {
	return &Client{
		endpoint: endpoint,
		tenantID: tenantID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Search returns the topK most similar documents for a query.
func (c *Client) Search(ctx context.Context, query string, topK int) ([]Document, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	u.Path = "/api/v1/search"

	payload, err := json.Marshal(map[string]any{
		"query": query,
		"top_k": topK,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tenantID != "" {
		req.Header.Set("X-Scope-OrgID", c.tenantID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		Results []Document `json:"results"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return out.Results, nil
}
