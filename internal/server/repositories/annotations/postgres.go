// Package annotations provides a PostgreSQL-backed repository for notes
// attached to sources.
package annotations

import (
	"context"
	"fmt"

	"github.com/synscript/synscript/internal/dbx"
	"github.com/synscript/synscript/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, a *models.Annotation) error {
	query := `
		INSERT INTO annotations (source_id, user_id, note)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, a.SourceID, a.UserID, a.Note).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListBySource returns the source's annotations oldest first. The join
// scopes the listing to the vault, so a source id from another vault
// yields an empty list rather than leaked notes.
func (r *PostgresRepository) ListBySource(ctx context.Context, vaultID, sourceID string) ([]*models.Annotation, error) {
	query := `
		SELECT a.id, a.source_id, a.user_id, a.note, a.created_at
		FROM annotations a
		JOIN sources s ON s.id = a.source_id
		WHERE a.source_id = $1 AND s.vault_id = $2
		ORDER BY a.created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, sourceID, vaultID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Annotation
	for rows.Next() {
		var item models.Annotation
		if err := rows.Scan(&item.ID, &item.SourceID, &item.UserID, &item.Note, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
