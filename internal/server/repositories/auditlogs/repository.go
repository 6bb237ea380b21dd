package auditlogs

import (
	"context"
	"time"

	"github.com/synscript/synscript/internal/server/models"
)

type Repository interface {
	Append(ctx context.Context, entry *models.AuditLogEntry) error
	List(ctx context.Context, vaultID string, limit int, before time.Time) ([]*models.AuditLogEntry, error)
}
