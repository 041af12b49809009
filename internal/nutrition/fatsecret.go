package nutrition

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/forkline/forkline/backend/internal/secrets"
)

const (
	defaultFatSecretAPIURL   = "https://platform.fatsecret.com/rest/server.api"
	defaultFatSecretTokenURL = "https://oauth.fatsecret.com/connect/token"

	// fatSecretSecretName is the secret-store entry holding the
	// client_id/client_secret JSON document.
	fatSecretSecretName = "fatsecret-api-creds"
)

// FatSecretClient queries the FatSecret Platform API. It authenticates
// with a bearer token obtained through the credential cache.
//
// Failure policy: a call that still fails after one retry returns an
// *APIError. Callers of this provider feed the generation agent and must
// be able to tell "no match" apart from "provider unavailable".
type FatSecretClient struct {
	apiURL   string
	tokenURL string
	creds    *secrets.CredentialCache
	client   *http.Client
}

// NewFatSecretClient creates a FatSecret client backed by the given
// credential cache. Empty URLs fall back to the production endpoints.
func NewFatSecretClient(creds *secrets.CredentialCache, apiURL, tokenURL string) *FatSecretClient {
	if apiURL == "" {
		apiURL = defaultFatSecretAPIURL
	}
	if tokenURL == "" {
		tokenURL = defaultFatSecretTokenURL
	}
	return &FatSecretClient{
		apiURL:   apiURL,
		tokenURL: tokenURL,
		creds:    creds,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Search runs a foods.search call and normalizes the response.
func (c *FatSecretClient) Search(ctx context.Context, query string, maxResults int) ([]FoodRecord, error) {
	credentials, err := c.creds.GetCredentials(ctx, "fatsecret", fatSecretSecretName)
	if err != nil {
		return nil, err
	}
	token, err := c.creds.GetToken(ctx, "fatsecret", c.tokenURL, credentials)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("method", "foods.search")
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("search_expression", query)
	params.Set("format", "json")

	body, err := c.get(ctx, c.apiURL+"?"+params.Encode(), token.AccessToken)
	if err != nil {
		return nil, err
	}

	return Normalize(body), nil
}

// get issues the request, retrying the identical call once on failure.
func (c *FatSecretClient) get(ctx context.Context, rawURL, bearer string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		body, err := c.getOnce(ctx, rawURL, bearer)
		if err == nil {
			return body, nil
		}
		lastErr = err
		log.Printf("[FatSecret] Attempt %d failed: %v", attempt, err)
	}
	return nil, lastErr
}

func (c *FatSecretClient) getOnce(ctx context.Context, rawURL, bearer string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, &APIError{Provider: "fatsecret", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &APIError{Provider: "fatsecret", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Provider: "fatsecret", Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Provider: "fatsecret", StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
