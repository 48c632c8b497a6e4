package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"crime-case-workers/internal/models"
)

// Execer is satisfied by *sql.DB, *sql.Tx and their sqlx counterparts.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

const insertAuditSQL = `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`

// InsertAudit writes one audit_log row. Details are stored as JSONB.
func InsertAudit(ctx context.Context, ex Execer, entry models.AuditEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil || entry.Details == nil {
		details = []byte("{}")
	}

	createdAt := entry.CreatedAt
	if createdAt == "" {
		createdAt = time.Now().UTC().Format(time.RFC3339)
	}

	_, err = ex.ExecContext(ctx, insertAuditSQL,
		entry.EventType,
		entry.ResourceType,
		entry.ResourceID,
		details,
		createdAt,
	)
	return err
}
