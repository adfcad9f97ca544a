package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// Read-only; useful for CI and one-off runs.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(creds *Credentials) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables
func (e *EnvironmentStore) Retrieve() (*Credentials, error) {
	csrfToken := os.Getenv("TWEETARCHIVER_CSRF_TOKEN")
	if csrfToken == "" {
		return nil, ErrCredentialsNotFound
	}

	return &Credentials{
		CSRFToken:    csrfToken,
		Language:     os.Getenv("TWEETARCHIVER_LANGUAGE"),
		LastModified: time.Now(),
	}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete() error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists() bool {
	return os.Getenv("TWEETARCHIVER_CSRF_TOKEN") != ""
}
