// Package sources provides a PostgreSQL-backed repository for vault sources.
package sources

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

func (r *PostgresRepository) Create(ctx context.Context, src *models.Source) (*models.Source, error) {
	query := `
		INSERT INTO sources (vault_id, title, url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, src.VaultID, src.Title, src.URL).Scan(
		&src.ID, &src.CreatedAt, &src.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return src, nil
}

// Get returns a source scoped to its vault: a source id from another vault
// is reported as not found, never leaked.
func (r *PostgresRepository) Get(ctx context.Context, vaultID, id string) (*models.Source, error) {
	query := `
		SELECT id, vault_id, title, url, COALESCE(file_path, ''), created_at, updated_at
		FROM sources
		WHERE id = $1 AND vault_id = $2
	`
	src := &models.Source{}
	err := r.db.QueryRowContext(ctx, query, id, vaultID).Scan(
		&src.ID, &src.VaultID, &src.Title, &src.URL, &src.FilePath, &src.CreatedAt, &src.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return src, nil
}

func (r *PostgresRepository) ListByVault(ctx context.Context, vaultID string) ([]*models.Source, error) {
	query := `
		SELECT id, vault_id, title, url, COALESCE(file_path, ''), created_at, updated_at
		FROM sources
		WHERE vault_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, vaultID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Source
	for rows.Next() {
		var item models.Source
		if err := rows.Scan(
			&item.ID, &item.VaultID, &item.Title, &item.URL, &item.FilePath, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, vaultID, id string, title, url string) error {
	query := `
		UPDATE sources
		SET title = $3, url = $4, updated_at = now()
		WHERE id = $1 AND vault_id = $2
	`
	return r.execExpectingRow(ctx, query, id, vaultID, title, url)
}

func (r *PostgresRepository) SetFilePath(ctx context.Context, vaultID, id string, filePath string) error {
	query := `
		UPDATE sources
		SET file_path = $3, updated_at = now()
		WHERE id = $1 AND vault_id = $2
	`
	return r.execExpectingRow(ctx, query, id, vaultID, filePath)
}

func (r *PostgresRepository) Delete(ctx context.Context, vaultID, id string) error {
	query := `
		DELETE FROM sources
		WHERE id = $1 AND vault_id = $2
	`
	return r.execExpectingRow(ctx, query, id, vaultID)
}

// SelectByIDs returns the subset of ids that exist in the vault, with file
// paths, so callers can clean up object storage before a bulk delete.
func (r *PostgresRepository) SelectByIDs(ctx context.Context, vaultID string, ids []string) ([]*models.Source, error) {
	query := `
		SELECT id, vault_id, title, url, COALESCE(file_path, ''), created_at, updated_at
		FROM sources
		WHERE vault_id = $1 AND id = ANY($2)
	`
	rows, err := r.db.QueryContext(ctx, query, vaultID, ids)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Source
	for rows.Next() {
		var item models.Source
		if err := rows.Scan(
			&item.ID, &item.VaultID, &item.Title, &item.URL, &item.FilePath, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteBulk removes the given sources from the vault in one statement and
// returns how many rows were deleted.
func (r *PostgresRepository) DeleteBulk(ctx context.Context, vaultID string, ids []string) (int64, error) {
	query := `
		DELETE FROM sources
		WHERE vault_id = $1 AND id = ANY($2)
	`
	res, err := r.db.ExecContext(ctx, query, vaultID, ids)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
