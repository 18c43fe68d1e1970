// Package covers resolves cover images for tracks that were uploaded
// without one, by searching the Pexels photo API and caching results.
package covers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// PhotoSource carries the renditions Pexels returns per photo.
type PhotoSource struct {
	Original string `json:"original"`
	Large    string `json:"large"`
	Medium   string `json:"medium"`
	Small    string `json:"small"`
}

// Photo is a single Pexels search result.
type Photo struct {
	ID           int         `json:"id"`
	Photographer string      `json:"photographer"`
	Src          PhotoSource `json:"src"`
	Alt          string      `json:"alt"`
}

// SearchResult is a page of Pexels search results.
type SearchResult struct {
	TotalResults int     `json:"total_results"`
	Page         int     `json:"page"`
	PerPage      int     `json:"per_page"`
	Photos       []Photo `json:"photos"`
}

// PexelsClient is a thin client for the Pexels photo search endpoint.
type PexelsClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewPexelsClient creates a client against the given base URL, normally
// https://api.pexels.com/v1.
func NewPexelsClient(apiKey, baseURL string) *PexelsClient {
	return &PexelsClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Search runs one photo search. An empty result set is not an error.
func (c *PexelsClient) Search(query string, perPage, page int) (*SearchResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("pexels api key not configured")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))

	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build pexels request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pexels returned status %d", resp.StatusCode)
	}

	var result SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode pexels response: %w", err)
	}
	return &result, nil
}
