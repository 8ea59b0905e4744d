package service

import (
	"context"
	"strings"

	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/guardrails"
	"github.com/promptuary/promptuary/internal/telemetry"
)

// SuggestionType selects the flavor of prompt suggestions to generate.
type SuggestionType string

const (
	SuggestionGeneral  SuggestionType = "general"
	SuggestionWriting  SuggestionType = "writing"
	SuggestionCoding   SuggestionType = "coding"
	SuggestionAnalysis SuggestionType = "analysis"
	SuggestionBusiness SuggestionType = "business"
)

// ParseSuggestionType validates a suggestion type string. Empty input
// defaults to general.
func ParseSuggestionType(s string) (SuggestionType, error) {
	switch SuggestionType(strings.TrimSpace(strings.ToLower(s))) {
	case "":
		return SuggestionGeneral, nil
	case SuggestionGeneral:
		return SuggestionGeneral, nil
	case SuggestionWriting:
		return SuggestionWriting, nil
	case SuggestionCoding:
		return SuggestionCoding, nil
	case SuggestionAnalysis:
		return SuggestionAnalysis, nil
	case SuggestionBusiness:
		return SuggestionBusiness, nil
	default:
		return "", domain.ErrInvalidSuggestionType
	}
}

var suggestionSystemPrompts = map[SuggestionType]string{
	SuggestionGeneral:  "You suggest reusable prompts for a prompt library. Return one suggestion per line, no numbering.",
	SuggestionWriting:  "You suggest reusable writing-assistant prompts. Return one suggestion per line, no numbering.",
	SuggestionCoding:   "You suggest reusable coding-assistant prompts. Return one suggestion per line, no numbering.",
	SuggestionAnalysis: "You suggest reusable data-analysis prompts. Return one suggestion per line, no numbering.",
	SuggestionBusiness: "You suggest reusable business-writing prompts. Return one suggestion per line, no numbering.",
}

const (
	improveSystemPrompt = "You improve prompts for clarity, specificity, and structure. " +
		"Return only the improved prompt text, no commentary."
	analyzeSystemPrompt = "You review prompts and report on structure, clarity, and likely failure modes. " +
		"Be concise and concrete."

	assistMaxTokens   = 1024
	assistTemperature = 0.7
)

// AssistClient is the surface of the local model server the assist
// features need.
type AssistClient interface {
	Complete(ctx context.Context, system, prompt string, maxTokens int, temperature float32) (string, error)
	Models(ctx context.Context) ([]string, error)
	ChatModel() string
	EmbeddingModel() string
}

// ContentScreener screens text before it reaches the model.
type ContentScreener interface {
	ValidateInput(text string) guardrails.Report
}

// AssistStatus reports model-server availability for the status endpoint.
type AssistStatus struct {
	Available      bool
	ChatModel      string
	EmbeddingModel string
	Models         []string
	Error          string
}

// AssistServiceInterface is implemented by the real service and the NoOp
// fallback used when no model server is configured.
type AssistServiceInterface interface {
	Suggestions(ctx context.Context, libraryID, actor string, kind SuggestionType, topic string) ([]string, error)
	Improve(ctx context.Context, libraryID, actor, content string) (string, error)
	Analyze(ctx context.Context, libraryID, actor, content string) (string, error)
	Status(ctx context.Context) (*AssistStatus, error)
}

// AssistService generates prompt suggestions, improvements, and analyses
// through a local OpenAI-compatible model server. Input is screened by the
// guardrail engine before it reaches the model.
type AssistService struct {
	client   AssistClient
	screener ContentScreener
	auditor  Auditor
}

// NewAssistService creates a new AssistService instance
func NewAssistService(client AssistClient, screener ContentScreener, auditor Auditor) *AssistService {
	return &AssistService{
		client:   client,
		screener: screener,
		auditor:  auditor,
	}
}

// Suggestions generates prompt suggestions of the given type, one per line.
func (s *AssistService) Suggestions(ctx context.Context, libraryID, actor string, kind SuggestionType, topic string) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "AssistService.Suggestions", telemetry.SpanAttributes{
		LibraryID: libraryID,
		Operation: "suggestions",
	})
	defer span.End()

	system, ok := suggestionSystemPrompts[kind]
	if !ok {
		return nil, domain.ErrInvalidSuggestionType
	}

	prompt := "Suggest 5 prompts."
	if topic != "" {
		if err := s.screen(topic); err != nil {
			return nil, err
		}
		prompt = "Suggest 5 prompts about: " + topic
	}

	raw, err := s.client.Complete(ctx, system, prompt, assistMaxTokens, assistTemperature)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "suggestion generation failed", err)
	}

	s.auditor.Record(ctx, AuditEntry{
		LibraryID:    libraryID,
		Action:       domain.AuditAISuggestion,
		ResourceType: "assist",
		Actor:        actor,
		Details:      map[string]any{"type": string(kind)},
	})

	return splitSuggestions(raw), nil
}

// Improve rewrites prompt content for clarity and structure.
func (s *AssistService) Improve(ctx context.Context, libraryID, actor, content string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "AssistService.Improve", telemetry.SpanAttributes{
		LibraryID: libraryID,
		Operation: "improve",
	})
	defer span.End()

	if strings.TrimSpace(content) == "" {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "content is required")
	}
	if err := s.screen(content); err != nil {
		return "", err
	}

	improved, err := s.client.Complete(ctx, improveSystemPrompt, content, assistMaxTokens, assistTemperature)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "prompt improvement failed", err)
	}

	s.auditor.Record(ctx, AuditEntry{
		LibraryID:    libraryID,
		Action:       domain.AuditAIImprovement,
		ResourceType: "assist",
		Actor:        actor,
	})

	return strings.TrimSpace(improved), nil
}

// Analyze reports on a prompt's structure and clarity.
func (s *AssistService) Analyze(ctx context.Context, libraryID, actor, content string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "AssistService.Analyze", telemetry.SpanAttributes{
		LibraryID: libraryID,
		Operation: "analyze",
	})
	defer span.End()

	if strings.TrimSpace(content) == "" {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "content is required")
	}
	if err := s.screen(content); err != nil {
		return "", err
	}

	analysis, err := s.client.Complete(ctx, analyzeSystemPrompt, content, assistMaxTokens, assistTemperature)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "prompt analysis failed", err)
	}

	s.auditor.Record(ctx, AuditEntry{
		LibraryID:    libraryID,
		Action:       domain.AuditAIAnalysis,
		ResourceType: "assist",
		Actor:        actor,
	})

	return strings.TrimSpace(analysis), nil
}

// Status reports whether the model server is reachable and which models it
// serves.
func (s *AssistService) Status(ctx context.Context) (*AssistStatus, error) {
	models, err := s.client.Models(ctx)
	status := &AssistStatus{
		ChatModel:      s.client.ChatModel(),
		EmbeddingModel: s.client.EmbeddingModel(),
	}
	if err != nil {
		status.Error = err.Error()
		return status, nil
	}
	status.Available = true
	status.Models = models
	return status, nil
}

func (s *AssistService) screen(text string) error {
	if s.screener == nil {
		return nil
	}
	report := s.screener.ValidateInput(text)
	if report.Allowed || report.RiskLevel != domain.RiskHigh {
		return nil
	}
	return domain.NewDomainError(domain.ErrCodeValidation, "content blocked by guardrails")
}

func splitSuggestions(raw string) []string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•0123456789. "))
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// NoOpAssistService is wired when no model server is configured. Every
// operation fails with a typed not-configured error; Status reports
// unavailable without erroring.
type NoOpAssistService struct{}

func (NoOpAssistService) Suggestions(ctx context.Context, libraryID, actor string, kind SuggestionType, topic string) ([]string, error) {
	return nil, domain.ErrAssistNotConfigured
}

func (NoOpAssistService) Improve(ctx context.Context, libraryID, actor, content string) (string, error) {
	return "", domain.ErrAssistNotConfigured
}

func (NoOpAssistService) Analyze(ctx context.Context, libraryID, actor, content string) (string, error) {
	return "", domain.ErrAssistNotConfigured
}

func (NoOpAssistService) Status(ctx context.Context) (*AssistStatus, error) {
	return &AssistStatus{Available: false, Error: "ai assistance is not configured"}, nil
}
