package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkline/forkline/backend/config"
)

// newImageEndpoint serves a canned images-API response after failing the
// first failures requests with a 500.
func newImageEndpoint(payload []byte, failures int) (*httptest.Server, *int) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= failures {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"created":1,"data":[{"b64_json":%q}]}`,
			base64.StdEncoding.EncodeToString(payload))
	}))
	return server, &calls
}

func TestGenerateImageRetriesTransientFailure(t *testing.T) {
	payload := []byte("png-bytes")
	server, calls := newImageEndpoint(payload, 1)
	defer server.Close()

	s := NewImageServiceForEndpoint(server.URL, "test-key", &config.S3Config{BucketName: "test-bucket"})

	data, err := s.generateImage(context.Background(), "tomato soup")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, 2, *calls)
}

func TestGenerateImageGivesUpAfterRetries(t *testing.T) {
	server, calls := newImageEndpoint(nil, 100)
	defer server.Close()

	s := NewImageServiceForEndpoint(server.URL, "test-key", &config.S3Config{BucketName: "test-bucket"})

	_, err := s.generateImage(context.Background(), "tomato soup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, *calls)
}
