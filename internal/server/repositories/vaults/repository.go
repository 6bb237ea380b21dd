package vaults

import (
	"context"

	"github.com/synscript/synscript/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, vault *models.Vault) (*models.Vault, error)
	Get(ctx context.Context, id string) (*models.Vault, error)
	Update(ctx context.Context, id string, name string, description string) error
	Delete(ctx context.Context, id string) error
	ListForUser(ctx context.Context, userID string) ([]*models.Vault, error)
}
