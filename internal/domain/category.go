package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaxCategoryNameLength bounds category names.
const MaxCategoryNameLength = 100

// Category groups prompts within a library. Names are unique per library.
type Category struct {
	ID          string
	LibraryID   string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewCategory creates a new Category instance
func NewCategory(id, libraryID, name, description string, now time.Time) *Category {
	return &Category{
		ID:          id,
		LibraryID:   libraryID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ValidateCategory validates a Category instance
func ValidateCategory(c *Category) error {
	if c == nil {
		return fmt.Errorf("category cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("category ID is required")
	}

	if c.LibraryID == "" {
		return fmt.Errorf("category LibraryID is required")
	}

	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category Name is required")
	}

	if len(c.Name) > MaxCategoryNameLength {
		return fmt.Errorf("category Name exceeds %d characters", MaxCategoryNameLength)
	}

	return nil
}
