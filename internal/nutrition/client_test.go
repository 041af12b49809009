package nutrition

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkline/forkline/backend/internal/secrets"
)

type staticStore struct{}

func (staticStore) GetSecret(ctx context.Context, name string) (string, error) {
	return `{"client_id":"id","client_secret":"secret"}`, nil
}

func newTestCredentials(t *testing.T) (*secrets.CredentialCache, *httptest.Server) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"test-token","expires_in":3600}`)
	}))
	t.Cleanup(tokenSrv.Close)
	return secrets.NewCredentialCache(staticStore{}), tokenSrv
}

func TestFatSecretClient_Search(t *testing.T) {
	t.Run("should return normalized records with bearer auth", func(t *testing.T) {
		apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			assert.Equal(t, "foods.search", r.URL.Query().Get("method"))
			assert.Equal(t, "grilled chicken", r.URL.Query().Get("search_expression"))
			assert.Equal(t, "3", r.URL.Query().Get("max_results"))
			fmt.Fprint(w, `{"foods":{"food":[{"food_id":"1","food_name":"Chicken Breast"}]}}`)
		}))
		defer apiSrv.Close()

		creds, tokenSrv := newTestCredentials(t)
		client := NewFatSecretClient(creds, apiSrv.URL, tokenSrv.URL)

		records, err := client.Search(context.Background(), "grilled chicken", 3)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Chicken Breast", records[0].Name)
	})

	t.Run("should retry once and succeed", func(t *testing.T) {
		var calls int
		apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			fmt.Fprint(w, `{"foods":{"food":[{"food_id":"1","food_name":"Oats"}]}}`)
		}))
		defer apiSrv.Close()

		creds, tokenSrv := newTestCredentials(t)
		client := NewFatSecretClient(creds, apiSrv.URL, tokenSrv.URL)

		records, err := client.Search(context.Background(), "oats", 3)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		require.Len(t, records, 1)
	})

	t.Run("should return APIError after two failures", func(t *testing.T) {
		var calls int
		apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, "upstream down")
		}))
		defer apiSrv.Close()

		creds, tokenSrv := newTestCredentials(t)
		client := NewFatSecretClient(creds, apiSrv.URL, tokenSrv.URL)

		_, err := client.Search(context.Background(), "oats", 3)
		require.Error(t, err)
		assert.Equal(t, 2, calls)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
		assert.Contains(t, apiErr.Body, "upstream down")
	})
}

func TestOpenFoodFactsClient_Search(t *testing.T) {
	t.Run("should return normalized records without auth", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			assert.Equal(t, "apple", r.URL.Query().Get("search_terms"))
			assert.Equal(t, "process", r.URL.Query().Get("action"))
			assert.Equal(t, "5", r.URL.Query().Get("page_size"))
			fmt.Fprint(w, `{"products":[{"product_name":"Apple","code":"123"}]}`)
		}))
		defer srv.Close()

		client := NewOpenFoodFactsClient(srv.URL)

		records, err := client.Search(context.Background(), "apple", 5)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Apple", records[0].Name)
		assert.Equal(t, "123", records[0].UPC)
	})

	t.Run("should retry once and succeed", func(t *testing.T) {
		var calls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, `{"products":[{"product_name":"Rice"}]}`)
		}))
		defer srv.Close()

		client := NewOpenFoodFactsClient(srv.URL)

		records, err := client.Search(context.Background(), "rice", 5)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		require.Len(t, records, 1)
	})

	t.Run("should return empty slice after persistent failure", func(t *testing.T) {
		var calls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewOpenFoodFactsClient(srv.URL)

		records, err := client.Search(context.Background(), "rice", 5)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Empty(t, records)
	})

	t.Run("should return empty slice for unrecognized shape", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"unexpected":[]}`)
		}))
		defer srv.Close()

		client := NewOpenFoodFactsClient(srv.URL)

		records, err := client.Search(context.Background(), "rice", 5)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}
