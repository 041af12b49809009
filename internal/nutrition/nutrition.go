// Package nutrition queries external food-data providers and normalizes
// their heterogeneous responses into a single record shape.
package nutrition

import (
	"context"
	"fmt"
)

// FoodRecord is the canonical representation of a food lookup result,
// independent of which provider produced it. Absent attributes are left
// empty rather than guessed.
type FoodRecord struct {
	Name      string             `json:"name"`
	Brand     string             `json:"brand,omitempty"`
	UPC       string             `json:"upc,omitempty"`
	Source    string             `json:"source"`
	Nutrients map[string]float64 `json:"nutrients,omitempty"`
}

// Client looks up food records for a free-text query.
type Client interface {
	Search(ctx context.Context, query string, maxResults int) ([]FoodRecord, error)
}

// APIError reports a provider call that failed after its retry, carrying
// the status and body for operator diagnosis.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error { return e.Err }
