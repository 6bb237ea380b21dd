// Package rolecache caches resolved (vault, user) roles in an external
// key-value service with a bounded TTL. The cache is best-effort: absence
// is always safe (the resolver falls back to the store) and every
// operation degrades to a miss or no-op when the service is unreachable.
package rolecache

import (
	"context"
	"time"

	"github.com/synscript/synscript/internal/server/models"
)

// DefaultTTL bounds how stale a cached role may be after a mutation made
// through a path that does not explicitly invalidate.
const DefaultTTL = 300 * time.Second

// Cache is the role cache contract. Implementations must be safe for
// concurrent use and must never block longer than their configured
// operation timeout.
type Cache interface {
	// Get returns the cached role and true on a hit.
	Get(ctx context.Context, vaultID, userID string) (models.Role, bool)

	// Set stores the role with the given TTL. Absence of a role is never
	// cached; callers only Set resolved memberships.
	Set(ctx context.Context, vaultID, userID string, role models.Role, ttl time.Duration)

	// Invalidate removes the entry for (vaultID, userID). With an empty
	// userID it removes every entry for the vault (bulk operations such as
	// vault deletion). Invalidation is advisory: correctness is bounded by
	// TTL regardless.
	Invalidate(ctx context.Context, vaultID, userID string)
}
