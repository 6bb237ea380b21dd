package annotations

import (
	"context"

	"github.com/synscript/synscript/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, a *models.Annotation) error
	ListBySource(ctx context.Context, vaultID, sourceID string) ([]*models.Annotation, error)
}
