package comments

import (
	"context"

	"github.com/synscript/synscript/internal/server/models"
)

type Repository interface {
	GetOrCreateThread(ctx context.Context, vaultID, sourceID string) (*models.CommentThread, error)
	FindThread(ctx context.Context, vaultID, threadID string) (*models.CommentThread, error)
	Insert(ctx context.Context, c *models.Comment) error
	ListByThread(ctx context.Context, threadID string) ([]*models.Comment, error)
}
