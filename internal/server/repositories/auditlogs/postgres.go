// Package auditlogs provides a PostgreSQL-backed, append-only repository
// for the audit trail of privileged mutations.
package auditlogs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/synscript/synscript/internal/dbx"
	"github.com/synscript/synscript/internal/server/models"
)

const defaultListLimit = 500

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append writes one immutable entry. created_at is assigned by the store at
// commit time, which is what gives per-vault total ordering.
func (r *PostgresRepository) Append(ctx context.Context, entry *models.AuditLogEntry) error {
	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	payload, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("metadata marshal error: %w", err)
	}

	query := `
		INSERT INTO audit_logs (vault_id, user_id, action, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	userID := sql.NullString{String: entry.UserID, Valid: entry.UserID != ""}
	if err := r.db.QueryRowContext(ctx, query,
		entry.VaultID, userID, entry.Action, payload).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// List returns entries for the vault in created_at descending order.
// A zero before means "from the newest"; otherwise only entries strictly
// older than before are returned (keyset pagination).
func (r *PostgresRepository) List(ctx context.Context, vaultID string, limit int, before time.Time) ([]*models.AuditLogEntry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT id, vault_id, COALESCE(user_id::text, ''), action, metadata, created_at
		FROM audit_logs
		WHERE vault_id = $1 AND ($2::timestamptz IS NULL OR created_at < $2)
		ORDER BY created_at DESC
		LIMIT $3
	`
	var cursor sql.NullTime
	if !before.IsZero() {
		cursor = sql.NullTime{Time: before, Valid: true}
	}

	rows, err := r.db.QueryContext(ctx, query, vaultID, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AuditLogEntry
	for rows.Next() {
		var item models.AuditLogEntry
		var payload []byte
		if err := rows.Scan(
			&item.ID, &item.VaultID, &item.UserID, &item.Action, &payload, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &item.Metadata); err != nil {
				return nil, fmt.Errorf("metadata unmarshal error: %w", err)
			}
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
