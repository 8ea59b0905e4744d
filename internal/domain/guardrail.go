package domain

import (
	"fmt"
	"time"
)

// GuardrailConfigType identifies which stage of validation a config tunes.
type GuardrailConfigType string

const (
	GuardrailInputValidation   GuardrailConfigType = "input_validation"
	GuardrailOutputFiltering   GuardrailConfigType = "output_filtering"
	GuardrailRateLimit         GuardrailConfigType = "rate_limit"
	GuardrailContentModeration GuardrailConfigType = "content_moderation"
)

// RiskLevel grades how severe a guardrail violation is.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// riskRank orders risk levels for comparison.
var riskRank = map[RiskLevel]int{
	RiskLow:    1,
	RiskMedium: 2,
	RiskHigh:   3,
}

// MaxRisk returns the more severe of two risk levels.
func MaxRisk(a, b RiskLevel) RiskLevel {
	if riskRank[b] > riskRank[a] {
		return b
	}
	return a
}

// GuardrailConfig is a persisted, per-type tuning record. At most one
// config per type is active at a time.
type GuardrailConfig struct {
	ID            string
	LibraryID     string
	ConfigType    GuardrailConfigType
	Configuration map[string]any
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// GuardrailLog records one content evaluation.
type GuardrailLog struct {
	ID         string
	LibraryID  string
	ActionType string
	LogLevel   string
	Allowed    bool
	RiskLevel  RiskLevel
	Detail     string
	CreatedAt  time.Time
}

// NewGuardrailConfig creates a new GuardrailConfig instance
func NewGuardrailConfig(id, libraryID string, configType GuardrailConfigType, configuration map[string]any, now time.Time) *GuardrailConfig {
	return &GuardrailConfig{
		ID:            id,
		LibraryID:     libraryID,
		ConfigType:    configType,
		Configuration: configuration,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ValidateGuardrailConfig validates a GuardrailConfig instance
func ValidateGuardrailConfig(c *GuardrailConfig) error {
	if c == nil {
		return fmt.Errorf("guardrail config cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("guardrail config ID is required")
	}

	if c.LibraryID == "" {
		return fmt.Errorf("guardrail config LibraryID is required")
	}

	if !isValidGuardrailConfigType(c.ConfigType) {
		return fmt.Errorf("guardrail config ConfigType is invalid: %s", c.ConfigType)
	}

	return nil
}

// isValidGuardrailConfigType checks if a GuardrailConfigType is valid
func isValidGuardrailConfigType(t GuardrailConfigType) bool {
	switch t {
	case GuardrailInputValidation, GuardrailOutputFiltering,
		GuardrailRateLimit, GuardrailContentModeration:
		return true
	}
	return false
}

// IsValidRiskLevel checks if a RiskLevel is valid
func IsValidRiskLevel(r RiskLevel) bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}
