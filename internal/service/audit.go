package service

import (
	"context"
	"time"

	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/pagination"
	"go.uber.org/zap"
)

// AuditEntry is the caller-facing shape of one audit record. IP address and
// user agent are filled in from the request metadata on the context.
type AuditEntry struct {
	LibraryID    string
	Action       domain.AuditAction
	ResourceType string
	ResourceID   string
	Actor        string
	Details      map[string]any
}

// Auditor records audit entries. Recording must never fail the operation
// being audited.
type Auditor interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditLogRepositoryInterface defines the repository interface for audit log persistence
type AuditLogRepositoryInterface interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	ListWithCursor(ctx context.Context, libraryID string, filter AuditFilter, cursor *pagination.Cursor, limit int) (*AuditPageResult, error)
	Statistics(ctx context.Context, libraryID string) (*AuditStatistics, error)
	SecurityEvents(ctx context.Context, libraryID string, limit int) ([]*domain.AuditLog, error)
}

// AuditFilter narrows audit log listings. Zero values mean "no constraint".
type AuditFilter struct {
	Action       domain.AuditAction
	ResourceType string
	After        *time.Time
	Before       *time.Time
}

type AuditPageResult struct {
	Items      []*domain.AuditLog
	NextCursor string
	HasMore    bool
}

// ActorCount is one row of the top-actors breakdown.
type ActorCount struct {
	Actor string
	Count int64
}

// AuditStatistics aggregates audit volume for the dashboard.
type AuditStatistics struct {
	TotalEntries int64
	ByAction     map[domain.AuditAction]int64
	Last24hCount int64
	TopActors    []ActorCount
}

type ListAuditInput struct {
	LibraryID string
	Filter    AuditFilter
	Cursor    string
	Limit     int
}

type ListAuditOutput struct {
	Items   []*domain.AuditLog
	Cursor  string
	HasMore bool
}

// requestMetaKey carries per-request client metadata for audit rows.
type requestMetaKey struct{}

// RequestMeta is the client metadata attached to audit rows.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// WithRequestMeta returns a context carrying the request's client metadata.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFrom extracts client metadata stored by the HTTP layer.
func RequestMetaFrom(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}

// AuditService persists the audit trail. Write failures are logged and
// swallowed so auditing can never break the operation it observes.
type AuditService struct {
	repo    AuditLogRepositoryInterface
	uuidGen UUIDGenerator
	logger  *zap.Logger
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo AuditLogRepositoryInterface, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		repo:    repo,
		uuidGen: &DefaultUUIDGenerator{},
		logger:  logger,
	}
}

// NewAuditServiceWithUUIDGen creates a new AuditService with custom UUID generator (for testing)
func NewAuditServiceWithUUIDGen(repo AuditLogRepositoryInterface, logger *zap.Logger, uuidGen UUIDGenerator) *AuditService {
	svc := NewAuditService(repo, logger)
	svc.uuidGen = uuidGen
	return svc
}

// Record writes one audit row. Errors are logged at Warn and swallowed.
func (s *AuditService) Record(ctx context.Context, entry AuditEntry) {
	meta := RequestMetaFrom(ctx)

	log := domain.NewAuditLog(s.uuidGen.NewString(), entry.LibraryID, entry.Action,
		entry.ResourceType, entry.ResourceID, entry.Actor, time.Now().UTC())
	log.Details = entry.Details
	log.IPAddress = meta.IPAddress
	log.UserAgent = meta.UserAgent

	if err := domain.ValidateAuditLog(log); err != nil {
		s.logger.Warn("audit entry dropped: invalid",
			zap.String("action", string(entry.Action)),
			zap.Error(err))
		return
	}

	if err := s.repo.Create(ctx, log); err != nil {
		s.logger.Warn("audit entry dropped: write failed",
			zap.String("action", string(entry.Action)),
			zap.String("resource_id", entry.ResourceID),
			zap.Error(err))
	}
}

// List pages through the library's audit trail, newest first.
func (s *AuditService) List(ctx context.Context, input ListAuditInput) (*ListAuditOutput, error) {
	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	result, err := s.repo.ListWithCursor(ctx, input.LibraryID, input.Filter, cursor, pagination.ClampLimit(input.Limit))
	if err != nil {
		return nil, err
	}

	return &ListAuditOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}

// Statistics aggregates audit volume per action, last-24h activity, and the
// most active actors.
func (s *AuditService) Statistics(ctx context.Context, libraryID string) (*AuditStatistics, error) {
	return s.repo.Statistics(ctx, libraryID)
}

// SecurityEvents returns the most recent security-relevant entries.
func (s *AuditService) SecurityEvents(ctx context.Context, libraryID string, limit int) ([]*domain.AuditLog, error) {
	return s.repo.SecurityEvents(ctx, libraryID, pagination.ClampLimit(limit))
}
