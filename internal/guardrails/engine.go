// Package guardrails provides rule-based safety screening for prompt
// content and model output. The built-in rules can be replaced from a
// YAML file and hot-reloaded while the server is running.
package guardrails

import (
	"fmt"
	"strings"
	"sync"

	"github.com/promptuary/promptuary/internal/domain"
)

// Report is the outcome of screening a piece of text.
type Report struct {
	Allowed     bool
	RiskLevel   domain.RiskLevel
	Violations  []Category
	Suggestions []string
}

// Engine screens text against a replaceable rule set. It is safe for
// concurrent use.
type Engine struct {
	mu    sync.RWMutex
	rules *RuleSet
}

// NewEngine creates a new Engine instance. A nil rule set selects the
// built-in defaults.
func NewEngine(rules *RuleSet) *Engine {
	if rules == nil {
		rules = DefaultRuleSet()
	}
	return &Engine{rules: rules}
}

// ValidateInput screens prompt text before it is sent to a model.
func (e *Engine) ValidateInput(text string) Report {
	return e.screen(text, func(rs *RuleSet) []Rule { return rs.Input })
}

// ValidateOutput screens model output before it is returned to the caller.
func (e *Engine) ValidateOutput(text string) Report {
	return e.screen(text, func(rs *RuleSet) []Rule { return rs.Output })
}

// Replace validates the given rule set and makes it the active one.
// The previous rules stay active when validation fails.
func (e *Engine) Replace(rules *RuleSet) error {
	if rules == nil {
		return fmt.Errorf("rule set is required")
	}

	if err := rules.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	e.rules = rules
	e.mu.Unlock()

	return nil
}

// Rules returns the active rule set. Callers must not modify it.
func (e *Engine) Rules() *RuleSet {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rules
}

func (e *Engine) screen(text string, side func(*RuleSet) []Rule) Report {
	lowered := strings.ToLower(text)

	report := Report{Allowed: true, RiskLevel: domain.RiskLow}
	for _, rule := range side(e.Rules()) {
		if !matchesAny(lowered, rule.Patterns) {
			continue
		}
		report.Allowed = false
		report.RiskLevel = domain.MaxRisk(report.RiskLevel, rule.Risk)
		report.Violations = append(report.Violations, rule.Category)
		if rule.Suggestion != "" {
			report.Suggestions = append(report.Suggestions, rule.Suggestion)
		}
	}

	return report
}

func matchesAny(lowered string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}
