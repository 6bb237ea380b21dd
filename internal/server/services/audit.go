// Package services contains server-side business logic on top of the
// repositories: accounts, vaults, membership and invites, sources and the
// audit trail.
package services

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/synscript/synscript/internal/logging"
	"github.com/synscript/synscript/internal/server/models"
	"github.com/synscript/synscript/internal/server/repositories/repomanager"
)

// auditRecorder is what the mutating services need from the audit trail.
type auditRecorder interface {
	Record(ctx context.Context, vaultID, userID, action string, metadata map[string]any)
}

// AuditService appends and reads the per-vault audit trail.
type AuditService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewAuditService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *AuditService {
	return &AuditService{db: db, repomanager: m, logger: logger.With("module", "audit")}
}

// Record appends an audit entry. It never fails the calling mutation: a
// write error is logged and swallowed, the primary operation has already
// committed.
func (s *AuditService) Record(ctx context.Context, vaultID, userID, action string, metadata map[string]any) {
	repo := s.repomanager.AuditLogs(s.db)
	err := repo.Append(ctx, &models.AuditLogEntry{
		VaultID:  vaultID,
		UserID:   userID,
		Action:   action,
		Metadata: metadata,
	})
	if err != nil {
		s.logger.Error(ctx, "audit append failed", "vault_id", vaultID, "action", action, "error", err)
	}
}

// List returns entries newest-first. A zero before means "from the top";
// passing the CreatedAt of the last entry of a page fetches the next one.
func (s *AuditService) List(ctx context.Context, vaultID string, limit int, before time.Time) ([]*models.AuditLogEntry, error) {
	repo := s.repomanager.AuditLogs(s.db)
	return repo.List(ctx, vaultID, limit, before)
}

const csvPageSize = 500

// WriteCSV streams the vault's full audit trail to w as CSV, newest-first,
// paging through the keyset the same way List does. Metadata is serialized
// as a JSON document in the last column.
func (s *AuditService) WriteCSV(ctx context.Context, vaultID string, w io.Writer) error {
	repo := s.repomanager.AuditLogs(s.db)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"created_at", "user_id", "action", "metadata"}); err != nil {
		return err
	}

	var before time.Time
	for {
		entries, err := repo.List(ctx, vaultID, csvPageSize, before)
		if err != nil {
			return fmt.Errorf("listing audit entries: %w", err)
		}
		if len(entries) == 0 {
			break
		}

		for _, e := range entries {
			meta := ""
			if len(e.Metadata) > 0 {
				b, err := json.Marshal(e.Metadata)
				if err != nil {
					return err
				}
				meta = string(b)
			}
			row := []string{e.CreatedAt.UTC().Format(time.RFC3339), e.UserID, e.Action, meta}
			if err := cw.Write(row); err != nil {
				return err
			}
		}

		if len(entries) < csvPageSize {
			break
		}
		before = entries[len(entries)-1].CreatedAt
	}

	cw.Flush()
	return cw.Error()
}
