package rolecache

import (
	"context"
	"time"

	"github.com/synscript/synscript/internal/server/models"
)

// NoopCache is used when no cache service is configured: every read is a
// miss and writes are discarded. The system stays correct, merely slower.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (*NoopCache) Get(context.Context, string, string) (models.Role, bool) {
	return models.RoleNone, false
}

func (*NoopCache) Set(context.Context, string, string, models.Role, time.Duration) {}

func (*NoopCache) Invalidate(context.Context, string, string) {}
