package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/synscript/synscript/internal/common"
	"github.com/synscript/synscript/internal/dbx"
	"github.com/synscript/synscript/internal/logging"
	"github.com/synscript/synscript/internal/server/models"
	"github.com/synscript/synscript/internal/server/repositories/repomanager"
)

// InviteService converts pending invites into memberships when the invited
// account signs in or registers.
type InviteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	audit       auditRecorder
	logger      logging.Logger
}

func NewInviteService(db *sql.DB, m repomanager.RepositoryManager, audit auditRecorder, logger logging.Logger) *InviteService {
	return &InviteService{db: db, repomanager: m, audit: audit, logger: logger.With("module", "invites")}
}

// AcceptPending consumes every pending invite addressed to email and returns
// the vault IDs the user gained access to. Each invite is handled in its own
// transaction so one bad invite cannot block the rest. An invite whose
// membership already exists is simply deleted; its role is NOT applied over
// the existing grant.
func (s *InviteService) AcceptPending(ctx context.Context, userID, email string) ([]string, error) {
	repo := s.repomanager.Invites(s.db)

	pending, err := repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("listing invites: %w", err)
	}

	var accepted []string
	for _, inv := range pending {
		joined, err := s.acceptOne(ctx, userID, inv)
		if err != nil {
			s.logger.Error(ctx, "invite accept failed", "invite_id", inv.ID, "vault_id", inv.VaultID, "error", err)
			continue
		}
		if joined {
			accepted = append(accepted, inv.VaultID)
			s.audit.Record(ctx, inv.VaultID, userID, models.AuditMemberAdded,
				map[string]any{"member_id": userID, "role": string(inv.Role), "via": "invite"})
		}
	}
	return accepted, nil
}

func (s *InviteService) acceptOne(ctx context.Context, userID string, inv *models.Invite) (bool, error) {
	joined := false
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		membersTx := s.repomanager.Members(tx)
		err := membersTx.Insert(ctx, &models.Membership{
			VaultID: inv.VaultID,
			UserID:  userID,
			Role:    inv.Role,
		})
		switch {
		case err == nil:
			joined = true
		case errors.Is(err, common.ErrConflict):
			// Already a member, the invite is stale. Consume it anyway.
		default:
			return err
		}
		return s.repomanager.Invites(tx).Delete(ctx, inv.ID)
	})
	return joined && err == nil, err
}
