package domain

import (
	"fmt"
	"time"
)

// Library represents a tenant: one named prompt collection with its own
// categories, API keys, and audit trail.
type Library struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// NewLibrary creates a new Library instance
func NewLibrary(id, name string, createdAt time.Time) *Library {
	return &Library{
		ID:        id,
		Name:      name,
		CreatedAt: createdAt,
	}
}

// ValidateLibrary validates a Library instance
func ValidateLibrary(l *Library) error {
	if l == nil {
		return fmt.Errorf("library cannot be nil")
	}

	if l.ID == "" {
		return fmt.Errorf("library ID is required")
	}

	if l.Name == "" {
		return fmt.Errorf("library Name is required")
	}

	return nil
}
