// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/synscript/synscript/internal/dbx"
	"github.com/synscript/synscript/internal/server/migrations"
	"github.com/synscript/synscript/internal/server/repositories/annotations"
	"github.com/synscript/synscript/internal/server/repositories/auditlogs"
	"github.com/synscript/synscript/internal/server/repositories/comments"
	"github.com/synscript/synscript/internal/server/repositories/invites"
	"github.com/synscript/synscript/internal/server/repositories/members"
	"github.com/synscript/synscript/internal/server/repositories/refreshtokens"
	"github.com/synscript/synscript/internal/server/repositories/sources"
	"github.com/synscript/synscript/internal/server/repositories/users"
	"github.com/synscript/synscript/internal/server/repositories/vaults"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository
// implementations and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// RefreshTokens returns a refreshtokens.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

// Vaults returns a vaults.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Vaults(db dbx.DBTX) vaults.Repository {
	return vaults.NewPostgresRepository(db)
}

// Members returns a members.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Members(db dbx.DBTX) members.Repository {
	return members.NewPostgresRepository(db)
}

// Invites returns an invites.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Invites(db dbx.DBTX) invites.Repository {
	return invites.NewPostgresRepository(db)
}

// Sources returns a sources.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Sources(db dbx.DBTX) sources.Repository {
	return sources.NewPostgresRepository(db)
}

// Annotations returns an annotations.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Annotations(db dbx.DBTX) annotations.Repository {
	return annotations.NewPostgresRepository(db)
}

// Comments returns a comments.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Comments(db dbx.DBTX) comments.Repository {
	return comments.NewPostgresRepository(db)
}

// AuditLogs returns an auditlogs.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) AuditLogs(db dbx.DBTX) auditlogs.Repository {
	return auditlogs.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
