package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/promptuary/promptuary/internal/domain"
)

// maxEmbeddingChars caps the text sent to the embedding model.
const maxEmbeddingChars = 8000

// EmbeddingPromptRepository defines the repository interface for embedding operations
type EmbeddingPromptRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Prompt, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
}

// EmbeddingService computes and stores prompt embeddings. It is driven by
// the background worker, never by request handlers.
type EmbeddingService struct {
	client EmbeddingClient
	repo   EmbeddingPromptRepository
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(client EmbeddingClient, repo EmbeddingPromptRepository) *EmbeddingService {
	return &EmbeddingService{
		client: client,
		repo:   repo,
	}
}

// GenerateEmbedding generates and stores an embedding for the given prompt ID.
func (s *EmbeddingService) GenerateEmbedding(ctx context.Context, promptID string) error {
	prompt, err := s.repo.GetByID(ctx, promptID)
	if err != nil {
		return err
	}

	text := buildEmbeddingText(prompt)

	embedding, err := s.client.GenerateEmbedding(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	if err := s.repo.UpdateEmbedding(ctx, promptID, embedding); err != nil {
		return fmt.Errorf("failed to update embedding: %w", err)
	}

	return nil
}

func buildEmbeddingText(p *domain.Prompt) string {
	var parts []string

	if p.Title != "" {
		parts = append(parts, p.Title)
	}
	if p.Description != "" {
		parts = append(parts, p.Description)
	}
	if p.Content != "" {
		parts = append(parts, p.Content)
	}

	text := strings.Join(parts, "\n\n")
	if len(text) > maxEmbeddingChars {
		text = text[:maxEmbeddingChars]
	}
	return text
}
