package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/synscript/synscript/internal/logging"
	"github.com/synscript/synscript/internal/server/models"
)

// NotifyChannel is the Postgres channel the row triggers publish to.
const NotifyChannel = "synscript_changes"

const reconnectDelay = 3 * time.Second

// notificationConn is the slice of *pgx.Conn the listener uses.
type notificationConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

var connectPg = func(ctx context.Context, dsn string) (notificationConn, error) {
	return pgx.Connect(ctx, dsn)
}

// Listener holds a dedicated Postgres connection on LISTEN and feeds the
// decoded change events into the hub. One listener serves the whole
// process; the hub handles per-vault fan-out.
type Listener struct {
	dsn    string
	hub    *Hub
	logger logging.Logger
}

func NewListener(dsn string, hub *Hub, logger logging.Logger) *Listener {
	return &Listener{dsn: dsn, hub: hub, logger: logger.With("module", "changefeed")}
}

// Run listens until ctx is canceled, reconnecting after failures. The feed
// is best-effort: events emitted while disconnected are lost, clients
// recover by refetching.
func (l *Listener) Run(ctx context.Context) {
	for {
		if err := l.listen(ctx); err != nil && !errors.Is(err, context.Canceled) {
			l.logger.Error(ctx, "change feed connection lost", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := connectPg(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		return err
	}
	l.logger.Info(ctx, "change feed listening", "channel", NotifyChannel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.dispatch(ctx, n.Payload)
	}
}

func (l *Listener) dispatch(ctx context.Context, payload string) {
	var event models.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		l.logger.Warn(ctx, "undecodable change notification", "payload", payload, "error", err)
		return
	}

	concern, ok := concernForTable(event.Table)
	if !ok {
		l.logger.Warn(ctx, "change notification for unrouted table", "table", event.Table)
		return
	}

	l.hub.Publish(event.VaultID, concern, event)
}

func concernForTable(table string) (string, bool) {
	switch table {
	case "sources":
		return ConcernSources, true
	case "vault_members":
		return ConcernMembers, true
	}
	return "", false
}
