package domain

import (
	"fmt"
	"time"
)

// AuditAction identifies what happened in an audit log entry.
type AuditAction string

const (
	AuditPromptCreate AuditAction = "PROMPT_CREATE"
	AuditPromptUpdate AuditAction = "PROMPT_UPDATE"
	AuditPromptDelete AuditAction = "PROMPT_DELETE"
	AuditPromptView   AuditAction = "PROMPT_VIEW"
	AuditPromptUse    AuditAction = "PROMPT_USE"

	AuditCategoryCreate AuditAction = "CATEGORY_CREATE"
	AuditCategoryUpdate AuditAction = "CATEGORY_UPDATE"
	AuditCategoryDelete AuditAction = "CATEGORY_DELETE"

	AuditAISuggestion  AuditAction = "AI_SUGGESTION"
	AuditAIImprovement AuditAction = "AI_IMPROVEMENT"
	AuditAIAnalysis    AuditAction = "AI_ANALYSIS"

	AuditDataExport         AuditAction = "DATA_EXPORT"
	AuditPermissionDenied   AuditAction = "PERMISSION_DENIED"
	AuditRateLimitExceeded  AuditAction = "RATE_LIMIT_EXCEEDED"
	AuditSuspiciousActivity AuditAction = "SUSPICIOUS_ACTIVITY"
)

// SecurityActions are the audit actions surfaced by the security-events
// query.
var SecurityActions = []AuditAction{
	AuditPermissionDenied,
	AuditRateLimitExceeded,
	AuditSuspiciousActivity,
}

// AuditLog records one action against a resource. Writing an entry must
// never fail the operation being audited.
type AuditLog struct {
	ID           string
	LibraryID    string
	Action       AuditAction
	ResourceType string
	ResourceID   string
	Actor        string
	Details      map[string]any
	IPAddress    string
	UserAgent    string
	CreatedAt    time.Time
}

// NewAuditLog creates a new AuditLog instance
func NewAuditLog(id, libraryID string, action AuditAction, resourceType, resourceID, actor string, createdAt time.Time) *AuditLog {
	return &AuditLog{
		ID:           id,
		LibraryID:    libraryID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Actor:        actor,
		CreatedAt:    createdAt,
	}
}

// IsSecurityAction reports whether an action belongs to the security-event
// subset.
func IsSecurityAction(a AuditAction) bool {
	for _, action := range SecurityActions {
		if a == action {
			return true
		}
	}
	return false
}

// ValidateAuditLog validates an AuditLog instance
func ValidateAuditLog(l *AuditLog) error {
	if l == nil {
		return fmt.Errorf("audit log cannot be nil")
	}

	if l.ID == "" {
		return fmt.Errorf("audit log ID is required")
	}

	if l.LibraryID == "" {
		return fmt.Errorf("audit log LibraryID is required")
	}

	if l.Action == "" {
		return fmt.Errorf("audit log Action is required")
	}

	return nil
}
