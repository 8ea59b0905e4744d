package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/promptuary/promptuary/internal/domain"
	"go.uber.org/zap"
)

const apiKeyPrefix = "pk_"

type LibraryRepository interface {
	Create(ctx context.Context, library *domain.Library) error
	GetByID(ctx context.Context, id string) (*domain.Library, error)
	GetByName(ctx context.Context, name string) (*domain.Library, error)
	List(ctx context.Context) ([]*domain.Library, error)
	Delete(ctx context.Context, id string) error
}

type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetByID(ctx context.Context, id string) (*domain.APIKey, error)
	GetByHash(ctx context.Context, hash string) (*domain.APIKey, error)
	GetByLibraryID(ctx context.Context, libraryID string) ([]*domain.APIKey, error)
	Revoke(ctx context.Context, id string) error
	TouchLastUsed(ctx context.Context, id string, usedAt time.Time) error
}

type AuthService struct {
	libraryRepo LibraryRepository
	keyRepo     APIKeyRepository
	uuidGen     UUIDGenerator
	auditor     Auditor
	logger      *zap.Logger
}

func NewAuthService(libraryRepo LibraryRepository, keyRepo APIKeyRepository, uuidGen UUIDGenerator, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		libraryRepo: libraryRepo,
		keyRepo:     keyRepo,
		uuidGen:     uuidGen,
		logger:      logger,
	}
}

// SetAuditor enables audit rows for attributable auth failures. Optional;
// without it rejections are only logged.
func (s *AuthService) SetAuditor(auditor Auditor) {
	s.auditor = auditor
}

func (s *AuthService) CreateLibrary(ctx context.Context, name string) (*domain.Library, error) {
	if name == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "library name is required")
	}

	if existing, err := s.libraryRepo.GetByName(ctx, name); err == nil && existing != nil {
		return nil, domain.ErrLibraryAlreadyExists
	}

	library := domain.NewLibrary(s.uuidGen.NewString(), name, time.Now().UTC())

	if err := domain.ValidateLibrary(library); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid library", err)
	}

	if err := s.libraryRepo.Create(ctx, library); err != nil {
		return nil, err
	}

	return library, nil
}

func (s *AuthService) GetLibrary(ctx context.Context, id string) (*domain.Library, error) {
	return s.libraryRepo.GetByID(ctx, id)
}

func (s *AuthService) ListLibraries(ctx context.Context) ([]*domain.Library, error) {
	return s.libraryRepo.List(ctx)
}

// CreateAPIKey mints a new key for a library and returns the plaintext
// token. Only the sha256 hash is stored; the token cannot be recovered.
func (s *AuthService) CreateAPIKey(ctx context.Context, libraryID, name string) (string, error) {
	if libraryID == "" {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "library ID is required")
	}
	if name == "" {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "API key name is required")
	}

	if _, err := s.libraryRepo.GetByID(ctx, libraryID); err != nil {
		return "", err
	}

	token, err := generateAPIToken()
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to generate API key", err)
	}

	key := domain.NewAPIKey(s.uuidGen.NewString(), libraryID, name, hashToken(token), time.Now().UTC())

	if err := domain.ValidateAPIKey(key); err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid api key", err)
	}

	if err := s.keyRepo.Create(ctx, key); err != nil {
		return "", err
	}

	return token, nil
}

// CreateAPIKeyWithToken registers a caller-supplied token. Used by the
// bootstrap path so a deployment can pin its first key via the environment.
func (s *AuthService) CreateAPIKeyWithToken(ctx context.Context, libraryID, name, token string) error {
	if libraryID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "library ID is required")
	}
	if name == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "API key name is required")
	}
	if !IsValidAPIToken(token) {
		return domain.NewDomainError(domain.ErrCodeValidation, "invalid API key format (expected pk_<64 hex chars>)")
	}

	if _, err := s.libraryRepo.GetByID(ctx, libraryID); err != nil {
		return err
	}

	key := domain.NewAPIKey(s.uuidGen.NewString(), libraryID, name, hashToken(token), time.Now().UTC())

	if err := domain.ValidateAPIKey(key); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid api key", err)
	}

	return s.keyRepo.Create(ctx, key)
}

// ValidateAPIKey resolves a presented token to its stored key. The
// last-used stamp is updated best-effort.
func (s *AuthService) ValidateAPIKey(ctx context.Context, token string) (*domain.APIKey, error) {
	if !IsValidAPIToken(token) {
		return nil, domain.ErrInvalidAPIKey
	}

	key, err := s.keyRepo.GetByHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrAPIKeyNotFound) {
			return nil, domain.ErrInvalidAPIKey
		}
		return nil, err
	}

	if key.IsRevoked() {
		// A revoked key still resolves to its library, so the rejection
		// can be pinned to a tenant in the audit trail.
		if s.auditor != nil {
			s.auditor.Record(ctx, AuditEntry{
				LibraryID:    key.LibraryID,
				Action:       domain.AuditPermissionDenied,
				ResourceType: "api_key",
				ResourceID:   key.ID,
				Actor:        key.Name,
				Details:      map[string]any{"reason": "revoked"},
			})
		}
		return nil, domain.ErrAPIKeyRevoked
	}

	if err := s.keyRepo.TouchLastUsed(ctx, key.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to stamp api key last_used_at",
			zap.String("key_id", key.ID), zap.Error(err))
	}

	return key, nil
}

func (s *AuthService) RevokeAPIKey(ctx context.Context, keyID string) error {
	if keyID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "API key ID is required")
	}

	return s.keyRepo.Revoke(ctx, keyID)
}

func (s *AuthService) ListAPIKeys(ctx context.Context, libraryID string) ([]*domain.APIKey, error) {
	if libraryID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "library ID is required")
	}

	return s.keyRepo.GetByLibraryID(ctx, libraryID)
}

// BootstrapResult reports what EnsureDefaultLibrary did.
type BootstrapResult struct {
	Library    *domain.Library
	Created    bool
	FirstToken string
}

// EnsureDefaultLibrary creates the named library on first startup and mints
// its first API key. When a pinned token is supplied it is registered
// instead of a random one. Idempotent: an existing library is returned
// untouched with no new key.
func (s *AuthService) EnsureDefaultLibrary(ctx context.Context, name, pinnedToken string) (*BootstrapResult, error) {
	if existing, err := s.libraryRepo.GetByName(ctx, name); err == nil && existing != nil {
		return &BootstrapResult{Library: existing}, nil
	}

	library, err := s.CreateLibrary(ctx, name)
	if err != nil {
		return nil, err
	}

	if pinnedToken != "" {
		if err := s.CreateAPIKeyWithToken(ctx, library.ID, "default", pinnedToken); err != nil {
			return nil, err
		}
		return &BootstrapResult{Library: library, Created: true, FirstToken: pinnedToken}, nil
	}

	token, err := s.CreateAPIKey(ctx, library.ID, "default")
	if err != nil {
		return nil, err
	}

	return &BootstrapResult{Library: library, Created: true, FirstToken: token}, nil
}

func generateAPIToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(bytes), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func IsValidAPIToken(token string) bool {
	if !strings.HasPrefix(token, apiKeyPrefix) {
		return false
	}
	hexPart := token[len(apiKeyPrefix):]
	if len(hexPart) != 64 {
		return false
	}
	for _, c := range hexPart {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
