// Package invites provides a PostgreSQL-backed repository for pending
// email invites.
package invites

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

// Upsert stores a pending invite. A later invite for the same
// (vault_id, email) overwrites the pending role. Emails are stored
// lowercased so reconciliation can match case-insensitively.
func (r *PostgresRepository) Upsert(ctx context.Context, inv *models.Invite) error {
	query := `
		INSERT INTO vault_invites (vault_id, email, role)
		VALUES ($1, lower($2), $3)
		ON CONFLICT (vault_id, email)
		DO UPDATE SET role = EXCLUDED.role
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, inv.VaultID, inv.Email, inv.Role).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByEmail returns all pending invites matching the email,
// case-insensitively.
func (r *PostgresRepository) ListByEmail(ctx context.Context, email string) ([]*models.Invite, error) {
	query := `
		SELECT id, vault_id, email, role, created_at
		FROM vault_invites
		WHERE email = lower($1)
	`
	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Invite
	for rows.Next() {
		var item models.Invite
		if err := rows.Scan(&item.ID, &item.VaultID, &item.Email, &item.Role, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a consumed invite. Deleting an already-deleted invite is
// not an error: under concurrent reconciliation the second deleter simply
// affects zero rows.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM vault_invites
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
