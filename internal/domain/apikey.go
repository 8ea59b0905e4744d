package domain

import (
	"fmt"
	"time"
)

// APIKey represents a library-scoped credential for API access
type APIKey struct {
	ID         string
	LibraryID  string
	Name       string
	KeyHash    string // Never store plaintext keys
	CreatedAt  time.Time
	LastUsedAt *time.Time
	RevokedAt  *time.Time
}

// NewAPIKey creates a new APIKey instance
func NewAPIKey(id, libraryID, name, keyHash string, createdAt time.Time) *APIKey {
	return &APIKey{
		ID:        id,
		LibraryID: libraryID,
		Name:      name,
		KeyHash:   keyHash,
		CreatedAt: createdAt,
	}
}

// IsRevoked returns true if the API key has been revoked
func (a *APIKey) IsRevoked() bool {
	return a.RevokedAt != nil
}

// ValidateAPIKey validates an APIKey instance
func ValidateAPIKey(a *APIKey) error {
	if a == nil {
		return fmt.Errorf("api key cannot be nil")
	}

	if a.ID == "" {
		return fmt.Errorf("api key ID is required")
	}

	if a.LibraryID == "" {
		return fmt.Errorf("api key LibraryID is required")
	}

	if a.Name == "" {
		return fmt.Errorf("api key Name is required")
	}

	if a.KeyHash == "" {
		return fmt.Errorf("api key KeyHash is required")
	}

	return nil
}
