// Package vaults provides a PostgreSQL-backed repository for vault rows.
package vaults

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

func (r *PostgresRepository) Create(ctx context.Context, vault *models.Vault) (*models.Vault, error) {
	query := `
		INSERT INTO vaults (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		vault.Name, vault.Description, vault.OwnerID).Scan(&vault.ID, &vault.CreatedAt, &vault.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return vault, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Vault, error) {
	query := `
		SELECT id, name, description, owner_id, created_at, updated_at
		FROM vaults
		WHERE id = $1
	`
	vault := &models.Vault{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&vault.ID, &vault.Name, &vault.Description, &vault.OwnerID, &vault.CreatedAt, &vault.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return vault, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, name string, description string) error {
	query := `
		UPDATE vaults
		SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, name, description)
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

// Delete removes the vault row. Memberships, invites, sources and their
// dependents go with it via ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM vaults
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
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

// ListForUser returns every vault the user holds a membership in, most
// recently updated first.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]*models.Vault, error) {
	query := `
		SELECT v.id, v.name, v.description, v.owner_id, v.created_at, v.updated_at
		FROM vaults v
		JOIN vault_members m ON m.vault_id = v.id
		WHERE m.user_id = $1
		ORDER BY v.updated_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Vault
	for rows.Next() {
		var item models.Vault
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Description, &item.OwnerID, &item.CreatedAt, &item.UpdatedAt,
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
