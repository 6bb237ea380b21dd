package repomanager

import (
	"context"
	"database/sql"

	"github.com/synscript/synscript/internal/dbx"
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

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Vaults(db dbx.DBTX) vaults.Repository
	Members(db dbx.DBTX) members.Repository
	Invites(db dbx.DBTX) invites.Repository
	Sources(db dbx.DBTX) sources.Repository
	Annotations(db dbx.DBTX) annotations.Repository
	Comments(db dbx.DBTX) comments.Repository
	AuditLogs(db dbx.DBTX) auditlogs.Repository
}
