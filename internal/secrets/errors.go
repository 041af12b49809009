package secrets

import "fmt"

// CredentialError reports a failed credential fetch. Without credentials
// the owning request cannot proceed.
type CredentialError struct {
	Provider string
	Err      error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credentials for %s: %v", e.Provider, e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// TokenError reports a failed token exchange.
type TokenError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token exchange for %s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("token exchange for %s failed with status %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *TokenError) Unwrap() error { return e.Err }
