package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/synscript/synscript/internal/common"
	"github.com/synscript/synscript/internal/server/models"
	"github.com/synscript/synscript/internal/server/repositories/repomanager"
	"github.com/synscript/synscript/internal/server/rolecache"
)

// MemberService manages a vault's collaborator list: inviting, role
// changes and removal. The owner role is immutable here: there is exactly
// one owner per vault and it can neither be granted, demoted nor removed.
type MemberService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       rolecache.Cache
	audit       auditRecorder
}

func NewMemberService(db *sql.DB, m repomanager.RepositoryManager, cache rolecache.Cache, audit auditRecorder) *MemberService {
	return &MemberService{db: db, repomanager: m, cache: cache, audit: audit}
}

// List returns the vault's members with their emails, owner first.
func (s *MemberService) List(ctx context.Context, vaultID string) ([]*models.MemberWithEmail, error) {
	return s.repomanager.Members(s.db).ListByVault(ctx, vaultID)
}

// Invite grants role to the address. When an account with that email
// already exists the membership is created immediately; otherwise a
// pending invite is stored (or its role overwritten) and consumed on the
// invitee's next sign-in. Only contributor and viewer can be granted.
func (s *MemberService) Invite(ctx context.Context, vaultID, actorID, email string, role models.Role) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: invalid email", common.ErrValidation)
	}
	if role != models.RoleContributor && role != models.RoleViewer {
		return fmt.Errorf("%w: role must be contributor or viewer", common.ErrValidation)
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("looking up invitee: %w", err)
		}

		// No account yet: leave a pending invite.
		if err := s.repomanager.Invites(s.db).Upsert(ctx, &models.Invite{
			VaultID: vaultID,
			Email:   email,
			Role:    role,
		}); err != nil {
			return fmt.Errorf("storing invite: %w", err)
		}
		return nil
	}

	if err := s.repomanager.Members(s.db).Insert(ctx, &models.Membership{
		VaultID: vaultID,
		UserID:  user.ID,
		Role:    role,
	}); err != nil {
		return err
	}

	s.audit.Record(ctx, vaultID, actorID, models.AuditMemberAdded,
		map[string]any{"member_id": user.ID, "email": email, "role": string(role)})
	return nil
}

// UpdateRole changes a member's role and drops the member's cached role so
// the change takes effect on the next request, not after the TTL.
func (s *MemberService) UpdateRole(ctx context.Context, vaultID, actorID, memberID string, role models.Role) error {
	if role != models.RoleContributor && role != models.RoleViewer {
		return fmt.Errorf("%w: role must be contributor or viewer", common.ErrValidation)
	}

	current, err := s.repomanager.Members(s.db).Find(ctx, vaultID, memberID)
	if err != nil {
		return err
	}
	if current.Role == models.RoleOwner {
		return fmt.Errorf("%w: the owner role cannot be changed", common.ErrValidation)
	}

	if err := s.repomanager.Members(s.db).UpdateRole(ctx, vaultID, memberID, role); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, vaultID, memberID)
	s.audit.Record(ctx, vaultID, actorID, models.AuditMemberRoleChanged,
		map[string]any{"member_id": memberID, "old_role": string(current.Role), "new_role": string(role)})
	return nil
}

// Remove deletes a member. Removing the owner is refused; members may
// remove themselves (leave) and owners may remove anyone else.
func (s *MemberService) Remove(ctx context.Context, vaultID, actorID, memberID string) error {
	current, err := s.repomanager.Members(s.db).Find(ctx, vaultID, memberID)
	if err != nil {
		return err
	}
	if current.Role == models.RoleOwner {
		return fmt.Errorf("%w: the owner cannot be removed", common.ErrValidation)
	}

	if err := s.repomanager.Members(s.db).Delete(ctx, vaultID, memberID); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, vaultID, memberID)
	s.audit.Record(ctx, vaultID, actorID, models.AuditMemberRemoved,
		map[string]any{"member_id": memberID, "role": string(current.Role)})
	return nil
}
