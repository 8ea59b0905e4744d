package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/pagination"
	"github.com/promptuary/promptuary/internal/service"
)

const auditColumns = `id, library_id, action, resource_type, resource_id, actor, details, ip_address, user_agent, created_at`

// AuditLogRepository is append-only: rows are never updated or deleted,
// so the table stays a trustworthy activity record.
type AuditLogRepository struct {
	db dbtx
}

func NewAuditLogRepository(pool *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{db: pool}
}

func (r *AuditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	detailsJSON, err := json.Marshal(log.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO audit_logs (id, library_id, action, resource_type, resource_id, actor, details, ip_address, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		log.ID, log.LibraryID, log.Action, log.ResourceType, nullableString(log.ResourceID),
		log.Actor, detailsJSON, nullableString(log.IPAddress), nullableString(log.UserAgent), log.CreatedAt,
	)
	return err
}

func (r *AuditLogRepository) ListWithCursor(ctx context.Context, libraryID string, filter service.AuditFilter, cursor *pagination.Cursor, limit int) (*service.AuditPageResult, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + auditColumns + ` FROM audit_logs WHERE library_id = $1`)
	args := []any{libraryID}

	if filter.Action != "" {
		fmt.Fprintf(&sb, " AND action = $%d", len(args)+1)
		args = append(args, filter.Action)
	}
	if filter.ResourceType != "" {
		fmt.Fprintf(&sb, " AND resource_type = $%d", len(args)+1)
		args = append(args, filter.ResourceType)
	}
	if filter.After != nil {
		fmt.Fprintf(&sb, " AND created_at >= $%d", len(args)+1)
		args = append(args, *filter.After)
	}
	if filter.Before != nil {
		fmt.Fprintf(&sb, " AND created_at <= $%d", len(args)+1)
		args = append(args, *filter.Before)
	}
	if cursor != nil {
		fmt.Fprintf(&sb, " AND (created_at, id) < ($%d, $%d)", len(args)+1, len(args)+2)
		args = append(args, cursor.Timestamp, cursor.LastID)
	}

	fmt.Fprintf(&sb, " ORDER BY created_at DESC, id DESC LIMIT $%d", len(args)+1)
	args = append(args, limit+1)

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanAuditRows(rows)
	if err != nil {
		return nil, err
	}

	items, hasMore := pagination.Trim(items, limit)

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &service.AuditPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (r *AuditLogRepository) Statistics(ctx context.Context, libraryID string) (*service.AuditStatistics, error) {
	stats := &service.AuditStatistics{
		ByAction: make(map[domain.AuditAction]int64),
	}

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE created_at >= $2)
		 FROM audit_logs WHERE library_id = $1`,
		libraryID, time.Now().UTC().Add(-24*time.Hour),
	).Scan(&stats.TotalEntries, &stats.Last24hCount)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT action, COUNT(*) FROM audit_logs WHERE library_id = $1 GROUP BY action`,
		libraryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var action domain.AuditAction
		var count int64
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		stats.ByAction[action] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	actorRows, err := r.db.Query(ctx,
		`SELECT actor, COUNT(*) AS c
		 FROM audit_logs WHERE library_id = $1
		 GROUP BY actor ORDER BY c DESC LIMIT 10`,
		libraryID,
	)
	if err != nil {
		return nil, err
	}
	defer actorRows.Close()
	for actorRows.Next() {
		var ac service.ActorCount
		if err := actorRows.Scan(&ac.Actor, &ac.Count); err != nil {
			return nil, err
		}
		stats.TopActors = append(stats.TopActors, ac)
	}
	return stats, actorRows.Err()
}

func (r *AuditLogRepository) SecurityEvents(ctx context.Context, libraryID string, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+auditColumns+`
		 FROM audit_logs
		 WHERE library_id = $1 AND action = ANY($2)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3`,
		libraryID,
		[]string{
			string(domain.AuditPermissionDenied),
			string(domain.AuditRateLimitExceeded),
			string(domain.AuditSuspiciousActivity),
		},
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditRows(rows)
}

func scanAuditRows(rows pgx.Rows) ([]*domain.AuditLog, error) {
	var logs []*domain.AuditLog
	for rows.Next() {
		var l domain.AuditLog
		var resourceID, ipAddress, userAgent *string
		var detailsJSON []byte
		if err := rows.Scan(&l.ID, &l.LibraryID, &l.Action, &l.ResourceType, &resourceID,
			&l.Actor, &detailsJSON, &ipAddress, &userAgent, &l.CreatedAt); err != nil {
			return nil, err
		}
		if resourceID != nil {
			l.ResourceID = *resourceID
		}
		if ipAddress != nil {
			l.IPAddress = *ipAddress
		}
		if userAgent != nil {
			l.UserAgent = *userAgent
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &l.Details); err != nil {
				return nil, fmt.Errorf("unmarshal audit details: %w", err)
			}
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
