// Package catalog implements the HTTP client for the Met collection API:
// free-text search over object IDs and per-object record fetch.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/metget/met-browser/internal/model"
)

// DefaultBaseURL is the public collection API root. The Client's BaseURL
// field exists so tests can substitute an httptest server.
const DefaultBaseURL = "https://collectionapi.metmuseum.org/public/collection/v1"

const requestTimeout = 30 * time.Second

// Client talks to the collection API. The zero value is not usable;
// create one with NewClient.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client against the public API.
func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: requestTimeout},
	}
}

// searchResponse mirrors the search endpoint payload. ObjectIDs is null
// in the API response when nothing matched.
type searchResponse struct {
	Total     int   `json:"total"`
	ObjectIDs []int `json:"objectIDs"`
}

// SearchIDs queries the search endpoint for objects matching the query
// that have associated images, and returns their IDs in API order.
func (c *Client) SearchIDs(ctx context.Context, query string) ([]int, error) {
	params := url.Values{
		"hasImages": {"true"},
		"q":         {query},
	}
	reqURL := c.BaseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned HTTP %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}
	return sr.ObjectIDs, nil
}

// GetObject fetches the full record for one object ID.
func (c *Client) GetObject(ctx context.Context, id int) (*model.Artwork, error) {
	reqURL := fmt.Sprintf("%s/objects/%d", c.BaseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating object request for %d: %w", id, err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("object %d request: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("object %d returned HTTP %d", id, resp.StatusCode)
	}

	var a model.Artwork
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		return nil, fmt.Errorf("parsing object %d response: %w", id, err)
	}
	return &a, nil
}
