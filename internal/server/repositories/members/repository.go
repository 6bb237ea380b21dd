package members

import (
	"context"

	"github.com/synscript/synscript/internal/server/models"
)

// Repository is the role store adapter: the thin read/write interface over
// membership rows that the resolver, reconciler and member management all
// depend on.
type Repository interface {
	Find(ctx context.Context, vaultID, userID string) (*models.Membership, error)
	Insert(ctx context.Context, m *models.Membership) error
	UpdateRole(ctx context.Context, vaultID, userID string, role models.Role) error
	Delete(ctx context.Context, vaultID, userID string) error
	ListByVault(ctx context.Context, vaultID string) ([]*models.MemberWithEmail, error)
}
