package secrets

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// refreshMargin is how long before expiry a cached token is considered
// stale and refreshed on the next access.
const refreshMargin = 30 * time.Second

// Credentials is a provider's client id/secret pair, stored as a JSON
// document in the secret store.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// Token is a bearer token with its absolute expiry.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

type providerEntry struct {
	creds *Credentials
	token *Token
}

// CredentialCache memoizes provider credentials for the process lifetime
// and bearer tokens until shortly before they expire. Tokens are never
// persisted; a restart starts cold. The clock is injectable so expiry can
// be tested deterministically.
type CredentialCache struct {
	store  Store
	client *http.Client
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*providerEntry
}

// NewCredentialCache creates a cache backed by the given secret store.
func NewCredentialCache(store Store) *CredentialCache {
	return &CredentialCache{
		store:   store,
		client:  &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
		entries: make(map[string]*providerEntry),
	}
}

// WithClock overrides the cache's clock. Intended for tests.
func (c *CredentialCache) WithClock(now func() time.Time) *CredentialCache {
	c.now = now
	return c
}

// WithHTTPClient overrides the HTTP client used for token exchanges.
func (c *CredentialCache) WithHTTPClient(client *http.Client) *CredentialCache {
	c.client = client
	return c
}

func (c *CredentialCache) entry(provider string) *providerEntry {
	e, ok := c.entries[provider]
	if !ok {
		e = &providerEntry{}
		c.entries[provider] = e
	}
	return e
}

// GetCredentials returns the provider's credentials, fetching them from
// the secret store on first use and memoizing them afterwards.
func (c *CredentialCache) GetCredentials(ctx context.Context, provider, secretName string) (*Credentials, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entry(provider)
	if e.creds != nil {
		return e.creds, nil
	}

	payload, err := c.store.GetSecret(ctx, secretName)
	if err != nil {
		if _, ok := err.(*CredentialError); ok {
			return nil, err
		}
		return nil, &CredentialError{Provider: provider, Err: err}
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(payload), &creds); err != nil {
		return nil, &CredentialError{Provider: provider, Err: fmt.Errorf("invalid secret payload: %w", err)}
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, &CredentialError{Provider: provider, Err: fmt.Errorf("secret payload missing client_id or client_secret")}
	}

	e.creds = &creds
	log.Printf("[CredentialCache] Loaded credentials for provider %s", provider)
	return e.creds, nil
}

// GetToken returns a bearer token for the provider, reusing the cached one
// while it is still comfortably inside its lifetime and exchanging the
// credentials for a fresh one otherwise. The exchange is idempotent, so a
// redundant refresh from a racing caller is harmless; the mutex only
// avoids the duplicate network call.
func (c *CredentialCache) GetToken(ctx context.Context, provider, tokenURL string, creds *Credentials) (*Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entry(provider)
	if e.token != nil && e.token.ExpiresAt.After(c.now().Add(refreshMargin)) {
		return e.token, nil
	}

	token, err := c.exchange(ctx, provider, tokenURL, creds)
	if err != nil {
		return nil, err
	}

	e.token = token
	log.Printf("[CredentialCache] Refreshed token for provider %s, expires at %s", provider, token.ExpiresAt.Format(time.RFC3339))
	return token, nil
}

// exchange performs a client-credentials grant against the token endpoint.
func (c *CredentialCache) exchange(ctx context.Context, provider, tokenURL string, creds *Credentials) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", "basic")

	req, err := http.NewRequestWithContext(ctx, "POST", tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TokenError{Provider: provider, Err: err}
	}

	basic := base64.StdEncoding.EncodeToString([]byte(creds.ClientID + ":" + creds.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TokenError{Provider: provider, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TokenError{Provider: provider, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &TokenError{Provider: provider, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var grant struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &grant); err != nil {
		return nil, &TokenError{Provider: provider, Err: fmt.Errorf("invalid token response: %w", err)}
	}
	if grant.AccessToken == "" {
		return nil, &TokenError{Provider: provider, Err: fmt.Errorf("token response missing access_token")}
	}

	return &Token{
		AccessToken: grant.AccessToken,
		ExpiresAt:   c.now().Add(time.Duration(grant.ExpiresIn) * time.Second),
	}, nil
}
