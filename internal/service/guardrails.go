package service

import (
	"context"
	"strings"
	"time"

	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/guardrails"
	"go.uber.org/zap"
)

// GuardrailConfigRepositoryInterface persists per-type guardrail tuning.
type GuardrailConfigRepositoryInterface interface {
	GetActive(ctx context.Context, libraryID string, configType domain.GuardrailConfigType) (*domain.GuardrailConfig, error)
	Upsert(ctx context.Context, config *domain.GuardrailConfig) error
}

// GuardrailLogRepositoryInterface persists evaluation outcomes.
type GuardrailLogRepositoryInterface interface {
	Create(ctx context.Context, log *domain.GuardrailLog) error
}

// GuardrailStatus reports the engine's active rule surface.
type GuardrailStatus struct {
	InputRules  int
	OutputRules int
	Categories  []string
	RulesPath   string
}

// GuardrailService screens content through the rule engine, persists every
// evaluation, and manages per-type configs.
type GuardrailService struct {
	engine     *guardrails.Engine
	configRepo GuardrailConfigRepositoryInterface
	logRepo    GuardrailLogRepositoryInterface
	auditor    Auditor
	uuidGen    UUIDGenerator
	logger     *zap.Logger
	rulesPath  string
}

// NewGuardrailService creates a new GuardrailService instance
func NewGuardrailService(
	engine *guardrails.Engine,
	configRepo GuardrailConfigRepositoryInterface,
	logRepo GuardrailLogRepositoryInterface,
	auditor Auditor,
	logger *zap.Logger,
) *GuardrailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuardrailService{
		engine:     engine,
		configRepo: configRepo,
		logRepo:    logRepo,
		auditor:    auditor,
		uuidGen:    &DefaultUUIDGenerator{},
		logger:     logger,
	}
}

// SetRulesPath records the YAML override path for status reporting.
func (s *GuardrailService) SetRulesPath(path string) {
	s.rulesPath = path
}

// Validate screens prompt content. Every evaluation is logged; blocked
// high-risk content additionally audits a suspicious-activity event.
func (s *GuardrailService) Validate(ctx context.Context, libraryID, content, actor string) (*guardrails.Report, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "content is required")
	}

	report := s.engine.ValidateInput(content)

	s.writeLog(ctx, libraryID, "validate", report)

	if !report.Allowed && report.RiskLevel == domain.RiskHigh {
		s.auditor.Record(ctx, AuditEntry{
			LibraryID:    libraryID,
			Action:       domain.AuditSuspiciousActivity,
			ResourceType: "guardrails",
			Actor:        actor,
			Details:      map[string]any{"risk_level": string(report.RiskLevel), "violations": len(report.Violations)},
		})
	}

	return &report, nil
}

// Status reports the active rule surface.
func (s *GuardrailService) Status(ctx context.Context) (*GuardrailStatus, error) {
	rules := s.engine.Rules()

	seen := make(map[string]struct{})
	var categories []string
	for _, rule := range rules.Input {
		if _, dup := seen[string(rule.Category)]; dup {
			continue
		}
		seen[string(rule.Category)] = struct{}{}
		categories = append(categories, string(rule.Category))
	}

	return &GuardrailStatus{
		InputRules:  len(rules.Input),
		OutputRules: len(rules.Output),
		Categories:  categories,
		RulesPath:   s.rulesPath,
	}, nil
}

// GetConfig returns the active config of the given type.
func (s *GuardrailService) GetConfig(ctx context.Context, libraryID string, configType domain.GuardrailConfigType) (*domain.GuardrailConfig, error) {
	return s.configRepo.GetActive(ctx, libraryID, configType)
}

// UpdateConfig activates a new config of the given type, deactivating any
// previous one.
func (s *GuardrailService) UpdateConfig(ctx context.Context, libraryID string, configType domain.GuardrailConfigType, configuration map[string]any) (*domain.GuardrailConfig, error) {
	config := domain.NewGuardrailConfig(s.uuidGen.NewString(), libraryID, configType, configuration, time.Now().UTC())

	if err := domain.ValidateGuardrailConfig(config); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid guardrail config", err)
	}

	if err := s.configRepo.Upsert(ctx, config); err != nil {
		return nil, err
	}

	return config, nil
}

// writeLog persists one evaluation. Failures are logged and swallowed so a
// broken log table cannot block validation.
func (s *GuardrailService) writeLog(ctx context.Context, libraryID, actionType string, report guardrails.Report) {
	level := "info"
	if !report.Allowed {
		level = "warning"
	}

	log := &domain.GuardrailLog{
		ID:         s.uuidGen.NewString(),
		LibraryID:  libraryID,
		ActionType: actionType,
		LogLevel:   level,
		Allowed:    report.Allowed,
		RiskLevel:  report.RiskLevel,
		Detail:     violationSummary(report),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.logRepo.Create(ctx, log); err != nil {
		s.logger.Warn("guardrail log dropped: write failed",
			zap.String("library_id", libraryID), zap.Error(err))
	}
}

func violationSummary(report guardrails.Report) string {
	if len(report.Violations) == 0 {
		return ""
	}
	parts := make([]string, 0, len(report.Violations))
	for _, v := range report.Violations {
		parts = append(parts, string(v))
	}
	return strings.Join(parts, ",")
}
