// Package members provides the PostgreSQL-backed role store adapter for
// vault memberships.
package members

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

// Find returns the membership row for (vaultID, userID), or
// common.ErrNotFound when the user is not a member.
func (r *PostgresRepository) Find(ctx context.Context, vaultID, userID string) (*models.Membership, error) {
	query := `
		SELECT id, vault_id, user_id, role, created_at
		FROM vault_members
		WHERE vault_id = $1 AND user_id = $2
	`
	m := &models.Membership{}
	err := r.db.QueryRowContext(ctx, query, vaultID, userID).Scan(
		&m.ID, &m.VaultID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

// Insert creates a membership row. The unique constraint on
// (vault_id, user_id) is the sole guard against duplicate joins; a
// violation is returned as common.ErrConflict for the caller to interpret.
func (r *PostgresRepository) Insert(ctx context.Context, m *models.Membership) error {
	query := `
		INSERT INTO vault_members (vault_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, m.VaultID, m.UserID, m.Role).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateRole(ctx context.Context, vaultID, userID string, role models.Role) error {
	query := `
		UPDATE vault_members
		SET role = $3
		WHERE vault_id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, vaultID, userID, role)
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

func (r *PostgresRepository) Delete(ctx context.Context, vaultID, userID string) error {
	query := `
		DELETE FROM vault_members
		WHERE vault_id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, vaultID, userID)
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

// ListByVault returns the vault's members joined with account emails,
// owners first, then by join time.
func (r *PostgresRepository) ListByVault(ctx context.Context, vaultID string) ([]*models.MemberWithEmail, error) {
	query := `
		SELECT m.id, m.vault_id, m.user_id, m.role, m.created_at, u.email
		FROM vault_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.vault_id = $1
		ORDER BY (m.role = 'owner') DESC, m.created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, vaultID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.MemberWithEmail
	for rows.Next() {
		var item models.MemberWithEmail
		if err := rows.Scan(
			&item.ID, &item.VaultID, &item.UserID, &item.Role, &item.CreatedAt, &item.Email,
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
