package nutrition

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultOpenFoodFactsURL = "https://world.openfoodfacts.org/cgi/search.pl"

// OpenFoodFactsClient queries the public OpenFoodFacts search API, which
// needs no authentication.
//
// Failure policy: this provider supplies best-effort enrichment data, so
// a call that still fails after one retry returns an empty result instead
// of an error. Callers that need to distinguish outages must use the
// FatSecret provider.
type OpenFoodFactsClient struct {
	baseURL string
	client  *http.Client
}

// NewOpenFoodFactsClient creates a client for the given endpoint, falling
// back to the public instance when the URL is empty.
func NewOpenFoodFactsClient(baseURL string) *OpenFoodFactsClient {
	if baseURL == "" {
		baseURL = defaultOpenFoodFactsURL
	}
	return &OpenFoodFactsClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Search looks up products matching the query. It never returns an error
// for provider failures; see the type comment.
func (c *OpenFoodFactsClient) Search(ctx context.Context, query string, maxResults int) ([]FoodRecord, error) {
	params := url.Values{}
	params.Set("search_terms", query)
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("page_size", strconv.Itoa(maxResults))
	params.Set("page", "1")
	params.Set("lc", "en")

	rawURL := c.baseURL + "?" + params.Encode()

	for attempt := 1; attempt <= 2; attempt++ {
		body, err := c.getOnce(ctx, rawURL)
		if err == nil {
			return Normalize(body), nil
		}
		log.Printf("[OpenFoodFacts] Attempt %d failed: %v", attempt, err)
	}

	log.Printf("[OpenFoodFacts] Giving up on query %q, returning no records", query)
	return []FoodRecord{}, nil
}

func (c *OpenFoodFactsClient) getOnce(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Provider: "openfoodfacts", StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
