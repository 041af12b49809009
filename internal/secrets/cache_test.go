package secrets

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	payloads map[string]string
	calls    int
	err      error
}

func (s *fakeStore) GetSecret(ctx context.Context, name string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	payload, ok := s.payloads[name]
	if !ok {
		return "", &CredentialError{Provider: name, Err: fmt.Errorf("not found")}
	}
	return payload, nil
}

func TestCredentialCache_GetCredentials(t *testing.T) {
	store := &fakeStore{payloads: map[string]string{
		"fatsecret-api-creds": `{"client_id":"id-123","client_secret":"shh"}`,
	}}
	cache := NewCredentialCache(store)

	t.Run("should fetch once and memoize", func(t *testing.T) {
		creds, err := cache.GetCredentials(context.Background(), "fatsecret", "fatsecret-api-creds")
		require.NoError(t, err)
		assert.Equal(t, "id-123", creds.ClientID)
		assert.Equal(t, 1, store.calls)

		again, err := cache.GetCredentials(context.Background(), "fatsecret", "fatsecret-api-creds")
		require.NoError(t, err)
		assert.Same(t, creds, again)
		assert.Equal(t, 1, store.calls, "second lookup must not hit the store")
	})

	t.Run("should return CredentialError for missing secret", func(t *testing.T) {
		_, err := cache.GetCredentials(context.Background(), "unknown", "no-such-secret")
		require.Error(t, err)
		var credErr *CredentialError
		assert.ErrorAs(t, err, &credErr)
	})

	t.Run("should reject malformed payload", func(t *testing.T) {
		badStore := &fakeStore{payloads: map[string]string{"bad": "not-json"}}
		badCache := NewCredentialCache(badStore)
		_, err := badCache.GetCredentials(context.Background(), "bad", "bad")
		require.Error(t, err)
		var credErr *CredentialError
		assert.ErrorAs(t, err, &credErr)
	})
}

func TestCredentialCache_GetToken(t *testing.T) {
	creds := &Credentials{ClientID: "id-123", ClientSecret: "shh"}

	newTokenServer := func(t *testing.T, calls *int, expiresIn int64) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*calls++

			wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("id-123:shh"))
			assert.Equal(t, wantAuth, r.Header.Get("Authorization"))
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

			fmt.Fprintf(w, `{"access_token":"tok-%d","expires_in":%d}`, *calls, expiresIn)
		}))
	}

	t.Run("should reuse cached token inside the refresh margin", func(t *testing.T) {
		var calls int
		srv := newTokenServer(t, &calls, 3600)
		defer srv.Close()

		cache := NewCredentialCache(&fakeStore{})

		first, err := cache.GetToken(context.Background(), "fatsecret", srv.URL, creds)
		require.NoError(t, err)
		assert.Equal(t, "tok-1", first.AccessToken)

		second, err := cache.GetToken(context.Background(), "fatsecret", srv.URL, creds)
		require.NoError(t, err)
		assert.Equal(t, first.AccessToken, second.AccessToken)
		assert.Equal(t, 1, calls, "cached token must not trigger a second exchange")
	})

	t.Run("should refresh an expired token exactly once", func(t *testing.T) {
		var calls int
		srv := newTokenServer(t, &calls, 3600)
		defer srv.Close()

		now := time.Now()
		cache := NewCredentialCache(&fakeStore{}).WithClock(func() time.Time { return now })

		first, err := cache.GetToken(context.Background(), "fatsecret", srv.URL, creds)
		require.NoError(t, err)

		// Jump past the token lifetime.
		now = now.Add(2 * time.Hour)

		second, err := cache.GetToken(context.Background(), "fatsecret", srv.URL, creds)
		require.NoError(t, err)
		assert.NotEqual(t, first.AccessToken, second.AccessToken)
		assert.True(t, second.ExpiresAt.After(first.ExpiresAt))
		assert.Equal(t, 2, calls)
	})

	t.Run("should refresh when expiry is inside the margin", func(t *testing.T) {
		var calls int
		srv := newTokenServer(t, &calls, 10)
		defer srv.Close()

		cache := NewCredentialCache(&fakeStore{})

		_, err := cache.GetToken(context.Background(), "fatsecret", srv.URL, creds)
		require.NoError(t, err)

		// expires_in of 10s is inside the 30s margin, so the next call refreshes.
		_, err = cache.GetToken(context.Background(), "fatsecret", srv.URL, creds)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("should return TokenError with status and body on failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"invalid_client"}`)
		}))
		defer srv.Close()

		cache := NewCredentialCache(&fakeStore{})
		_, err := cache.GetToken(context.Background(), "fatsecret", srv.URL, creds)
		require.Error(t, err)

		var tokErr *TokenError
		require.ErrorAs(t, err, &tokErr)
		assert.Equal(t, http.StatusUnauthorized, tokErr.StatusCode)
		assert.Contains(t, tokErr.Body, "invalid_client")
	})
}
