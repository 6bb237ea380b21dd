package sources

import (
	"context"

	"github.com/synscript/synscript/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, src *models.Source) (*models.Source, error)
	Get(ctx context.Context, vaultID, id string) (*models.Source, error)
	ListByVault(ctx context.Context, vaultID string) ([]*models.Source, error)
	Update(ctx context.Context, vaultID, id string, title, url string) error
	SetFilePath(ctx context.Context, vaultID, id string, filePath string) error
	Delete(ctx context.Context, vaultID, id string) error
	SelectByIDs(ctx context.Context, vaultID string, ids []string) ([]*models.Source, error)
	DeleteBulk(ctx context.Context, vaultID string, ids []string) (int64, error)
}
