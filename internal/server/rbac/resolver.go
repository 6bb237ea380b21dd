// Package rbac resolves a user's effective role in a vault and derives the
// capability predicates every mutation handler re-checks server-side.
// Lookups are cache-aside: the role cache is consulted first and populated
// lazily from the membership store on a miss.
package rbac

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/synscript/synscript/internal/common"
	"github.com/synscript/synscript/internal/server/models"
	"github.com/synscript/synscript/internal/server/repositories/members"
	"github.com/synscript/synscript/internal/server/rolecache"
)

type Resolver struct {
	members members.Repository
	cache   rolecache.Cache
	ttl     time.Duration
}

func NewResolver(members members.Repository, cache rolecache.Cache, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = rolecache.DefaultTTL
	}
	return &Resolver{members: members, cache: cache, ttl: ttl}
}

// RoleOf returns the user's effective role in the vault, RoleNone when the
// user is not a member. A store failure is returned as an error wrapping
// common.ErrInfrastructure, never conflated with "no role": an outage must
// not read as "not a member". The absence of a role is never cached, so a
// fresh membership grant is visible immediately.
func (r *Resolver) RoleOf(ctx context.Context, vaultID, userID string) (models.Role, error) {
	if userID == "" {
		return models.RoleNone, nil
	}

	if role, ok := r.cache.Get(ctx, vaultID, userID); ok {
		return role, nil
	}

	m, err := r.members.Find(ctx, vaultID, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return models.RoleNone, nil
		}
		return models.RoleNone, fmt.Errorf("%w: role lookup: %v", common.ErrInfrastructure, err)
	}

	r.cache.Set(ctx, vaultID, userID, m.Role, r.ttl)
	return m.Role, nil
}

// Invalidate drops the cached role after a role-affecting mutation. With
// an empty userID the whole vault's entries are dropped. Advisory only:
// staleness stays bounded by the TTL even if this is skipped.
func (r *Resolver) Invalidate(ctx context.Context, vaultID, userID string) {
	r.cache.Invalidate(ctx, vaultID, userID)
}

// CanRead reports whether the role grants read access to vault content.
func CanRead(role models.Role) bool {
	return role != models.RoleNone
}

// CanWrite reports whether the role grants mutation of vault content.
func CanWrite(role models.Role) bool {
	return role == models.RoleOwner || role == models.RoleContributor
}

// CanInvite reports whether the role grants member management.
func CanInvite(role models.Role) bool {
	return role == models.RoleOwner
}

// CanDeleteVault reports whether the role grants vault deletion.
func CanDeleteVault(role models.Role) bool {
	return role == models.RoleOwner
}
