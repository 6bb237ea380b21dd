// Package comments provides a PostgreSQL-backed repository for per-source
// comment threads.
package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/synscript/synscript/internal/common"
	"github.com/synscript/synscript/internal/dbx"
	"github.com/synscript/synscript/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrCreateThread returns the thread for (vaultID, sourceID), creating
// it on first use. The upsert makes concurrent first comments converge on
// one thread instead of racing a select-then-insert.
func (r *PostgresRepository) GetOrCreateThread(ctx context.Context, vaultID, sourceID string) (*models.CommentThread, error) {
	query := `
		INSERT INTO comment_threads (vault_id, source_id)
		VALUES ($1, $2)
		ON CONFLICT (vault_id, source_id)
		DO UPDATE SET source_id = EXCLUDED.source_id
		RETURNING id, created_at
	`
	t := &models.CommentThread{VaultID: vaultID, SourceID: sourceID}
	err := r.db.QueryRowContext(ctx, query, vaultID, sourceID).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

// FindThread returns the thread scoped to its vault: a thread id from
// another vault is reported as not found.
func (r *PostgresRepository) FindThread(ctx context.Context, vaultID, threadID string) (*models.CommentThread, error) {
	query := `
		SELECT id, vault_id, source_id, created_at
		FROM comment_threads
		WHERE id = $1 AND vault_id = $2
	`
	t := &models.CommentThread{}
	err := r.db.QueryRowContext(ctx, query, threadID, vaultID).Scan(&t.ID, &t.VaultID, &t.SourceID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, c *models.Comment) error {
	query := `
		INSERT INTO comments (thread_id, user_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, c.ThreadID, c.UserID, c.Body).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByThread returns the thread's comments oldest first. Callers scope
// the thread id via FindThread before listing.
func (r *PostgresRepository) ListByThread(ctx context.Context, threadID string) ([]*models.Comment, error) {
	query := `
		SELECT id, thread_id, user_id, body, created_at
		FROM comments
		WHERE thread_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Comment
	for rows.Next() {
		var item models.Comment
		if err := rows.Scan(&item.ID, &item.ThreadID, &item.UserID, &item.Body, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
