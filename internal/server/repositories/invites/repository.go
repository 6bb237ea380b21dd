package invites

import (
	"context"

	"github.com/synscript/synscript/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, inv *models.Invite) error
	ListByEmail(ctx context.Context, email string) ([]*models.Invite, error)
	Delete(ctx context.Context, id string) error
}
