package guardrails

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/promptuary/promptuary/internal/domain"
)

// Category identifies a class of guardrail violations.
type Category string

// Input screening categories.
const (
	CategoryJailbreak Category = "jailbreak_attempt"
	CategoryHarmful   Category = "harmful_content"
	CategoryPersonal  Category = "personal_information"
	CategoryDeceptive Category = "deceptive_content"
	CategoryIllegal   Category = "illegal_activity"
)

// Output screening categories.
const (
	CategoryInappropriate  Category = "inappropriate_content"
	CategoryMisinformation Category = "misinformation"
	CategoryUnsafe         Category = "unsafe_instructions"
	CategoryPrivacy        Category = "privacy_violation"
)

// Rule flags text that contains any of its patterns. Patterns are matched
// as case-insensitive substrings.
type Rule struct {
	Category   Category         `yaml:"category"`
	Risk       domain.RiskLevel `yaml:"risk"`
	Suggestion string           `yaml:"suggestion"`
	Patterns   []string         `yaml:"patterns"`
}

// RuleSet groups the input-side and output-side screening rules.
type RuleSet struct {
	Input  []Rule `yaml:"input"`
	Output []Rule `yaml:"output"`
}

// DefaultRuleSet returns the built-in screening rules.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Input: []Rule{
			{
				Category:   CategoryJailbreak,
				Risk:       domain.RiskHigh,
				Suggestion: "Avoid attempting to override safety instructions",
				Patterns: []string{
					"ignore previous", "override", "bypass", "system prompt",
					"developer mode", "admin mode", "uncensored", "jailbreak",
					"ignore instructions", "new instructions", "disregard",
					"unlimited", "no restrictions", "no limits",
				},
			},
			{
				Category:   CategoryHarmful,
				Risk:       domain.RiskHigh,
				Suggestion: "Ensure content is safe and appropriate",
				Patterns: []string{
					"harm", "kill", "attack", "exploit", "hack", "steal",
					"illegal", "drugs", "weapon", "violence", "murder",
					"assault", "abuse", "torture", "terrorism", "bomb",
					"poison", "suicide", "self-harm",
				},
			},
			{
				Category:   CategoryPersonal,
				Risk:       domain.RiskHigh,
				Suggestion: "Avoid requesting sensitive personal information",
				Patterns: []string{
					"social security", "credit card", "password", "ssn",
					"birth date", "address", "phone number", "email address",
					"bank account", "medical records", "driver license",
					"passport number", "identification number",
				},
			},
			{
				Category:   CategoryDeceptive,
				Risk:       domain.RiskHigh,
				Suggestion: "Ensure content is truthful and not misleading",
				Patterns: []string{
					"fake", "forge", "impersonate", "pretend", "lie",
					"mislead", "deceive", "fraud", "scam", "phishing",
					"fake news", "misinformation", "disinformation",
				},
			},
			{
				Category:   CategoryIllegal,
				Risk:       domain.RiskHigh,
				Suggestion: "Avoid requests related to illegal activities",
				Patterns: []string{
					"how to hack", "how to steal", "how to make drugs",
					"how to weapon", "illegal", "unlawful", "criminal",
					"black market", "dark web", "money laundering",
					"tax evasion", "fraudulent", "counterfeit",
				},
			},
		},
		Output: []Rule{
			{
				Category:   CategoryInappropriate,
				Risk:       domain.RiskHigh,
				Suggestion: "Remove inappropriate or offensive content",
				Patterns: []string{
					"inappropriate", "offensive", "hate", "discriminatory",
					"harassment", "threat", "abuse", "insult", "bully",
					"racist", "sexist", "homophobic", "transphobic",
					"offensive language", "curse words", "profanity",
				},
			},
			{
				Category:   CategoryMisinformation,
				Risk:       domain.RiskMedium,
				Suggestion: "Verify information accuracy",
				Patterns: []string{
					"false", "incorrect", "wrong", "lie", "misleading",
					"untrue", "fabricated", "made up", "fake information",
				},
			},
			{
				Category:   CategoryUnsafe,
				Risk:       domain.RiskHigh,
				Suggestion: "Remove dangerous or illegal instructions",
				Patterns: []string{
					"how to hack", "how to steal", "how to make drugs",
					"how to weapon", "illegal", "dangerous", "harmful",
					"how to hurt", "how to damage", "how to break",
				},
			},
			{
				Category:   CategoryPrivacy,
				Risk:       domain.RiskHigh,
				Suggestion: "Remove references to private information",
				Patterns: []string{
					"personal information", "private data", "confidential",
					"sensitive information", "private details", "personal data",
				},
			},
		},
	}
}

// LoadFile reads a rule set override from a YAML file.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	rs.normalize()

	if err := rs.Validate(); err != nil {
		return nil, err
	}

	return &rs, nil
}

// Validate checks that the rule set is well formed.
func (rs *RuleSet) Validate() error {
	if len(rs.Input) == 0 {
		return fmt.Errorf("rule set input rules are required")
	}

	if len(rs.Output) == 0 {
		return fmt.Errorf("rule set output rules are required")
	}

	for _, rule := range append(append([]Rule{}, rs.Input...), rs.Output...) {
		if rule.Category == "" {
			return fmt.Errorf("rule category is required")
		}

		if !domain.IsValidRiskLevel(rule.Risk) {
			return fmt.Errorf("rule %s risk level is invalid: %s", rule.Category, rule.Risk)
		}

		if len(rule.Patterns) == 0 {
			return fmt.Errorf("rule %s requires at least one pattern", rule.Category)
		}
	}

	return nil
}

// normalize lowercases and trims patterns and drops empty ones, so matching
// stays case-insensitive regardless of how the file was written.
func (rs *RuleSet) normalize() {
	for _, side := range [][]Rule{rs.Input, rs.Output} {
		for i := range side {
			patterns := side[i].Patterns[:0]
			for _, p := range side[i].Patterns {
				p = strings.ToLower(strings.TrimSpace(p))
				if p != "" {
					patterns = append(patterns, p)
				}
			}
			side[i].Patterns = patterns
		}
	}
}
