// Package ollama talks to a local Ollama server through its
// OpenAI-compatible API.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is the model used for chat completions
	DefaultChatModel = "llama3.1"
	// DefaultEmbeddingModel is the model used for generating embeddings
	DefaultEmbeddingModel = "nomic-embed-text"
	// DefaultEmbeddingDimensions is the dimension of nomic-embed-text vectors
	DefaultEmbeddingDimensions = 768
)

var (
	// ErrEmptyText is returned when embedding text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrEmptyPrompt is returned when a completion prompt is empty
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
	// ErrWrongDimensions is returned when an embedding has unexpected dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoBaseURL is returned when no server base URL is configured
	ErrNoBaseURL = errors.New("ollama base URL not configured")
)

// API defines the interface for the upstream model server
type API interface {
	CreateChatCompletion(ctx context.Context, model, system, prompt string, maxTokens int, temperature float32) (string, error)
	CreateEmbeddings(ctx context.Context, model, text string) ([]float32, error)
	ListModels(ctx context.Context) ([]string, error)
}

// Client wraps the model server API with model selection and validation
type Client struct {
	api            API
	chatModel      string
	embeddingModel string
	dimensions     int
}

// Adapter implements API against an OpenAI-compatible endpoint
type Adapter struct {
	client *openai.Client
}

// NewAdapter creates a new Adapter instance for the given base URL. The
// OpenAI-compatible surface lives under /v1 on an Ollama server.
func NewAdapter(baseURL string) *Adapter {
	config := openai.DefaultConfig("ollama")
	config.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	return &Adapter{client: openai.NewClientWithConfig(config)}
}

// CreateChatCompletion calls the chat completions endpoint and returns the
// first choice's content
func (a *Adapter) CreateChatCompletion(ctx context.Context, model, system, prompt string, maxTokens int, temperature float32) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// CreateEmbeddings calls the embeddings endpoint
func (a *Adapter) CreateEmbeddings(ctx context.Context, model, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(model),
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

// ListModels returns the IDs of the models the server has loaded
func (a *Adapter) ListModels(ctx context.Context) ([]string, error) {
	list, err := a.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		names = append(names, m.ID)
	}
	return names, nil
}

// Config holds explicit client configuration
type Config struct {
	BaseURL             string
	ChatModel           string
	EmbeddingModel      string
	EmbeddingDimensions int
}

// NewClient creates a new Client instance for the given base URL using
// default models.
func NewClient(baseURL string) (*Client, error) {
	return NewClientWithConfig(Config{BaseURL: baseURL})
}

// NewClientWithConfig creates a new Client instance with explicit
// configuration.
func NewClientWithConfig(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrNoBaseURL
	}

	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}

	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}

	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}

	return &Client{
		api:            NewAdapter(cfg.BaseURL),
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		dimensions:     dimensions,
	}, nil
}

// GenerateEmbedding generates an embedding for the given text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	embedding, err := c.api.CreateEmbeddings(ctx, c.embeddingModel, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(embedding) != c.dimensions {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrWrongDimensions, c.dimensions, len(embedding))
	}

	return embedding, nil
}

// Complete generates a chat completion for the given prompt
func (c *Client) Complete(ctx context.Context, system, prompt string, maxTokens int, temperature float32) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	content, err := c.api.CreateChatCompletion(ctx, c.chatModel, system, prompt, maxTokens, temperature)
	if err != nil {
		return "", fmt.Errorf("failed to create completion: %w", err)
	}

	return content, nil
}

// Models lists the models available on the server
func (c *Client) Models(ctx context.Context) ([]string, error) {
	return c.api.ListModels(ctx)
}

// ChatModel returns the configured chat model name
func (c *Client) ChatModel() string {
	return c.chatModel
}

// EmbeddingModel returns the configured embedding model name
func (c *Client) EmbeddingModel() string {
	return c.embeddingModel
}
