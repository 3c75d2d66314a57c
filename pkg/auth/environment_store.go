package auth

import (
	"os"
	"strings"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// Read-only; suited for containerized deployments.
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func envVarFor(provider string) string {
	return "IGVIRAL_" + strings.ToUpper(provider) + "_KEY"
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(cred *Credential) error {
	return ErrStoreUnavailable
}

// Retrieve gets a credential from environment variables
func (e *EnvironmentStore) Retrieve(provider string) (*Credential, error) {
	if provider == "" {
		return nil, ErrInvalidCredential
	}

	key := os.Getenv(envVarFor(provider))
	if key == "" {
		return nil, ErrCredentialNotFound
	}

	return &Credential{
		Provider:     provider,
		APIKey:       key,
		LastModified: time.Now(),
	}, nil
}

// List returns credentials for the well-known providers present in the
// environment
func (e *EnvironmentStore) List() ([]*Credential, error) {
	creds := []*Credential{}
	for _, provider := range []string{ProviderApify, ProviderHiker} {
		if cred, err := e.Retrieve(provider); err == nil {
			creds = append(creds, cred)
		}
	}
	return creds, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(provider string) error {
	return ErrStoreUnavailable
}

// Exists checks if an environment credential exists
func (e *EnvironmentStore) Exists(provider string) bool {
	return os.Getenv(envVarFor(provider)) != ""
}
