package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/synscript/synscript/internal/common"
	"github.com/synscript/synscript/internal/dbx"
	"github.com/synscript/synscript/internal/server/models"
	"github.com/synscript/synscript/internal/server/repositories/repomanager"
	"github.com/synscript/synscript/internal/server/rolecache"
)

// VaultService manages vault lifecycle. Role checks happen at the
// transport layer; this service enforces only the structural invariants
// (creator becomes owner, deletions drop cached roles).
type VaultService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       rolecache.Cache
	audit       auditRecorder
}

func NewVaultService(db *sql.DB, m repomanager.RepositoryManager, cache rolecache.Cache, audit auditRecorder) *VaultService {
	return &VaultService{db: db, repomanager: m, cache: cache, audit: audit}
}

// Create inserts the vault and the creator's owner membership in one
// transaction: a vault without an owner must never be observable.
func (s *VaultService) Create(ctx context.Context, ownerID, name, description string) (*models.Vault, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: vault name is required", common.ErrValidation)
	}

	var created *models.Vault
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		v, err := s.repomanager.Vaults(tx).Create(ctx, &models.Vault{
			Name:        name,
			Description: description,
			OwnerID:     ownerID,
		})
		if err != nil {
			return err
		}
		if err := s.repomanager.Members(tx).Insert(ctx, &models.Membership{
			VaultID: v.ID,
			UserID:  ownerID,
			Role:    models.RoleOwner,
		}); err != nil {
			return err
		}
		created = v
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating vault: %w", err)
	}

	s.audit.Record(ctx, created.ID, ownerID, models.AuditVaultCreated, map[string]any{"name": created.Name})
	return created, nil
}

func (s *VaultService) Get(ctx context.Context, id string) (*models.Vault, error) {
	return s.repomanager.Vaults(s.db).Get(ctx, id)
}

// ListForUser returns every vault the user is a member of, most recently
// updated first.
func (s *VaultService) ListForUser(ctx context.Context, userID string) ([]*models.Vault, error) {
	return s.repomanager.Vaults(s.db).ListForUser(ctx, userID)
}

func (s *VaultService) Update(ctx context.Context, userID, id, name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: vault name is required", common.ErrValidation)
	}

	if err := s.repomanager.Vaults(s.db).Update(ctx, id, name, description); err != nil {
		return err
	}

	s.audit.Record(ctx, id, userID, models.AuditVaultUpdated, map[string]any{"name": name})
	return nil
}

// Delete removes the vault; memberships, invites, sources and audit rows go
// with it via cascade. Cached roles for the vault are dropped so a deleted
// vault cannot be read through a stale cache entry.
func (s *VaultService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repomanager.Vaults(s.db).Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, id, "")
	return nil
}
