package domain

import (
	"fmt"
	"strings"
	"time"
)

// Field limits enforced on prompts.
const (
	MaxPromptTitleLength  = 200
	MaxPromptAuthorLength = 100
)

// DefaultAuthor is recorded when a client does not identify one.
const DefaultAuthor = "admin"

// Prompt represents a reusable text prompt in a library. Deleting a prompt
// only clears IsActive; history and audit rows keep referring to it.
type Prompt struct {
	ID             string
	LibraryID      string
	Title          string
	Description    string
	Content        string
	CategoryID     *string
	Tags           []string
	Author         string
	IsFavorite     bool
	UsageCount     int64
	LastUsedAt     *time.Time
	IsActive       bool
	CurrentVersion int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PromptVersion is an immutable snapshot of a prompt's editable fields.
// Version numbers start at 1 and only ever grow; restoring an old version
// appends a new one.
type PromptVersion struct {
	ID            string
	PromptID      string
	VersionNumber int64
	Title         string
	Description   string
	Content       string
	Tags          []string
	ChangeSummary string
	CreatedAt     time.Time
}

// NewPrompt creates a new Prompt instance
func NewPrompt(id, libraryID, title, description, content string, categoryID *string, tags []string, author string, now time.Time) *Prompt {
	if author == "" {
		author = DefaultAuthor
	}
	return &Prompt{
		ID:             id,
		LibraryID:      libraryID,
		Title:          title,
		Description:    description,
		Content:        content,
		CategoryID:     categoryID,
		Tags:           tags,
		Author:         author,
		IsActive:       true,
		CurrentVersion: 1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// NewPromptVersion creates a new PromptVersion instance
func NewPromptVersion(id, promptID string, versionNumber int64, title, description, content string, tags []string, changeSummary string, createdAt time.Time) *PromptVersion {
	return &PromptVersion{
		ID:            id,
		PromptID:      promptID,
		VersionNumber: versionNumber,
		Title:         title,
		Description:   description,
		Content:       content,
		Tags:          tags,
		ChangeSummary: changeSummary,
		CreatedAt:     createdAt,
	}
}

// ValidatePrompt validates a Prompt instance
func ValidatePrompt(p *Prompt) error {
	if p == nil {
		return fmt.Errorf("prompt cannot be nil")
	}

	if p.ID == "" {
		return fmt.Errorf("prompt ID is required")
	}

	if p.LibraryID == "" {
		return fmt.Errorf("prompt LibraryID is required")
	}

	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("prompt Title is required")
	}

	if len(p.Title) > MaxPromptTitleLength {
		return fmt.Errorf("prompt Title exceeds %d characters", MaxPromptTitleLength)
	}

	if strings.TrimSpace(p.Content) == "" {
		return fmt.Errorf("prompt Content is required")
	}

	if len(p.Author) > MaxPromptAuthorLength {
		return fmt.Errorf("prompt Author exceeds %d characters", MaxPromptAuthorLength)
	}

	if p.CurrentVersion <= 0 {
		return fmt.Errorf("prompt CurrentVersion must be greater than 0")
	}

	return nil
}

// ValidatePromptVersion validates a PromptVersion instance
func ValidatePromptVersion(v *PromptVersion) error {
	if v == nil {
		return fmt.Errorf("prompt version cannot be nil")
	}

	if v.ID == "" {
		return fmt.Errorf("prompt version ID is required")
	}

	if v.PromptID == "" {
		return fmt.Errorf("prompt version PromptID is required")
	}

	if v.VersionNumber <= 0 {
		return fmt.Errorf("prompt version VersionNumber must be greater than 0")
	}

	return nil
}

// ContentChanged reports whether the editable fields differ between the
// prompt and the candidate values, which is what decides whether an update
// produces a new version.
func (p *Prompt) ContentChanged(title, description, content string, tags []string) bool {
	if p.Title != title || p.Description != description || p.Content != content {
		return true
	}
	if len(p.Tags) != len(tags) {
		return true
	}
	for i := range tags {
		if p.Tags[i] != tags[i] {
			return true
		}
	}
	return false
}
