package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/synscript/synscript/internal/dbx"
	"github.com/synscript/synscript/internal/logging"
	"github.com/synscript/synscript/internal/server/models"
	annotationsrepo "github.com/synscript/synscript/internal/server/repositories/annotations"
	auditlogsrepo "github.com/synscript/synscript/internal/server/repositories/auditlogs"
	commentsrepo "github.com/synscript/synscript/internal/server/repositories/comments"
	invitesrepo "github.com/synscript/synscript/internal/server/repositories/invites"
	membersrepo "github.com/synscript/synscript/internal/server/repositories/members"
	refreshtokensrepo "github.com/synscript/synscript/internal/server/repositories/refreshtokens"
	sourcesrepo "github.com/synscript/synscript/internal/server/repositories/sources"
	usersrepo "github.com/synscript/synscript/internal/server/repositories/users"
	vaultsrepo "github.com/synscript/synscript/internal/server/repositories/vaults"
)

// --- shared helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// --- repository fakes ---

type fakeUsersRepo struct {
	usersrepo.Repository
	createOut *models.User
	createErr error
	byEmail   *models.User
	byEmailErr error
	byID      *models.User
	byIDErr   error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}
func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.byEmailErr != nil {
		return nil, f.byEmailErr
	}
	return f.byEmail, nil
}
func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byID, nil
}

type fakeRefreshRepo struct {
	refreshtokensrepo.Repository
	findOut   *models.RefreshToken
	findErr   error
	delErr    error
	createErr error
	created   int
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created++
	return nil
}
func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}
func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error { return f.delErr }

type fakeVaultsRepo struct {
	vaultsrepo.Repository
	createOut *models.Vault
	createErr error
	getOut    *models.Vault
	getErr    error
	updateErr error
	deleteErr error
	listOut   []*models.Vault
	listErr   error

	deleted []string
}

func (f *fakeVaultsRepo) Create(ctx context.Context, v *models.Vault) (*models.Vault, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}
func (f *fakeVaultsRepo) Get(ctx context.Context, id string) (*models.Vault, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}
func (f *fakeVaultsRepo) Update(ctx context.Context, id, name, description string) error {
	return f.updateErr
}
func (f *fakeVaultsRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}
func (f *fakeVaultsRepo) ListForUser(ctx context.Context, userID string) ([]*models.Vault, error) {
	return f.listOut, f.listErr
}

type fakeMembersRepo struct {
	membersrepo.Repository
	findOut   *models.Membership
	findErr   error
	insertErr error
	updateErr error
	deleteErr error
	listOut   []*models.MemberWithEmail
	listErr   error

	inserted []*models.Membership
	updated  []string
	deleted  []string
}

func (f *fakeMembersRepo) Find(ctx context.Context, vaultID, userID string) (*models.Membership, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}
func (f *fakeMembersRepo) Insert(ctx context.Context, m *models.Membership) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, m)
	return nil
}
func (f *fakeMembersRepo) UpdateRole(ctx context.Context, vaultID, userID string, role models.Role) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, userID)
	return nil
}
func (f *fakeMembersRepo) Delete(ctx context.Context, vaultID, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, userID)
	return nil
}
func (f *fakeMembersRepo) ListByVault(ctx context.Context, vaultID string) ([]*models.MemberWithEmail, error) {
	return f.listOut, f.listErr
}

type fakeInvitesRepo struct {
	invitesrepo.Repository
	upsertErr error
	listOut   []*models.Invite
	listErr   error
	delErr    error

	upserted []*models.Invite
	deleted  []string
}

func (f *fakeInvitesRepo) Upsert(ctx context.Context, inv *models.Invite) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, inv)
	return nil
}
func (f *fakeInvitesRepo) ListByEmail(ctx context.Context, email string) ([]*models.Invite, error) {
	return f.listOut, f.listErr
}
func (f *fakeInvitesRepo) Delete(ctx context.Context, id string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeSourcesRepo struct {
	sourcesrepo.Repository
	createOut *models.Source
	createErr error
	getOut    *models.Source
	getErr    error
	updateErr error
	setErr    error
	deleteErr error
	listOut   []*models.Source
	listErr   error

	selOut  []*models.Source
	selErr  error
	bulkN   int64
	bulkErr error

	deleted []string
	setKeys []string
}

func (f *fakeSourcesRepo) Create(ctx context.Context, src *models.Source) (*models.Source, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}
func (f *fakeSourcesRepo) Get(ctx context.Context, vaultID, id string) (*models.Source, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}
func (f *fakeSourcesRepo) ListByVault(ctx context.Context, vaultID string) ([]*models.Source, error) {
	return f.listOut, f.listErr
}
func (f *fakeSourcesRepo) Update(ctx context.Context, vaultID, id, title, url string) error {
	return f.updateErr
}
func (f *fakeSourcesRepo) SetFilePath(ctx context.Context, vaultID, id, filePath string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.setKeys = append(f.setKeys, filePath)
	return nil
}
func (f *fakeSourcesRepo) Delete(ctx context.Context, vaultID, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}
func (f *fakeSourcesRepo) SelectByIDs(ctx context.Context, vaultID string, ids []string) ([]*models.Source, error) {
	return f.selOut, f.selErr
}
func (f *fakeSourcesRepo) DeleteBulk(ctx context.Context, vaultID string, ids []string) (int64, error) {
	return f.bulkN, f.bulkErr
}

type fakeAnnotationsRepo struct {
	annotationsrepo.Repository
	insertErr error
	listOut   []*models.Annotation
	listErr   error

	inserted []*models.Annotation
}

func (f *fakeAnnotationsRepo) Insert(ctx context.Context, a *models.Annotation) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	a.ID = "a-new"
	f.inserted = append(f.inserted, a)
	return nil
}
func (f *fakeAnnotationsRepo) ListBySource(ctx context.Context, vaultID, sourceID string) ([]*models.Annotation, error) {
	return f.listOut, f.listErr
}

type fakeCommentsRepo struct {
	commentsrepo.Repository
	threadOut *models.CommentThread
	threadErr error
	findOut   *models.CommentThread
	findErr   error
	insertErr error
	listOut   []*models.Comment
	listErr   error

	inserted []*models.Comment
}

func (f *fakeCommentsRepo) GetOrCreateThread(ctx context.Context, vaultID, sourceID string) (*models.CommentThread, error) {
	if f.threadErr != nil {
		return nil, f.threadErr
	}
	return f.threadOut, nil
}
func (f *fakeCommentsRepo) FindThread(ctx context.Context, vaultID, threadID string) (*models.CommentThread, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}
func (f *fakeCommentsRepo) Insert(ctx context.Context, c *models.Comment) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	c.ID = "c-new"
	f.inserted = append(f.inserted, c)
	return nil
}
func (f *fakeCommentsRepo) ListByThread(ctx context.Context, threadID string) ([]*models.Comment, error) {
	return f.listOut, f.listErr
}

type fakeAuditRepo struct {
	auditlogsrepo.Repository
	appendErr error
	appended  []*models.AuditLogEntry
	listOut   []*models.AuditLogEntry
	listErr   error
}

func (f *fakeAuditRepo) Append(ctx context.Context, e *models.AuditLogEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, e)
	return nil
}
func (f *fakeAuditRepo) List(ctx context.Context, vaultID string, limit int, before time.Time) ([]*models.AuditLogEntry, error) {
	return f.listOut, f.listErr
}

// --- repository manager fake ---

type fakeRepoManager struct {
	u  *fakeUsersRepo
	r  *fakeRefreshRepo
	v  *fakeVaultsRepo
	m  *fakeMembersRepo
	i  *fakeInvitesRepo
	s  *fakeSourcesRepo
	a  *fakeAnnotationsRepo
	c  *fakeCommentsRepo
	al *fakeAuditRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error           { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.r }
func (m *fakeRepoManager) Vaults(db dbx.DBTX) vaultsrepo.Repository               { return m.v }
func (m *fakeRepoManager) Members(db dbx.DBTX) membersrepo.Repository             { return m.m }
func (m *fakeRepoManager) Invites(db dbx.DBTX) invitesrepo.Repository             { return m.i }
func (m *fakeRepoManager) Sources(db dbx.DBTX) sourcesrepo.Repository             { return m.s }
func (m *fakeRepoManager) Annotations(db dbx.DBTX) annotationsrepo.Repository     { return m.a }
func (m *fakeRepoManager) Comments(db dbx.DBTX) commentsrepo.Repository           { return m.c }
func (m *fakeRepoManager) AuditLogs(db dbx.DBTX) auditlogsrepo.Repository         { return m.al }

// managerWithMembers overrides the members repository only; everything
// else delegates to the embedded fake manager.
type managerWithMembers struct {
	*fakeRepoManager
	members membersrepo.Repository
}

func (m *managerWithMembers) Members(db dbx.DBTX) membersrepo.Repository { return m.members }

// --- collaborator fakes ---

type fakeCache struct {
	invalidated [][2]string
}

func (f *fakeCache) Get(ctx context.Context, vaultID, userID string) (models.Role, bool) {
	return models.RoleNone, false
}
func (f *fakeCache) Set(ctx context.Context, vaultID, userID string, role models.Role, ttl time.Duration) {
}
func (f *fakeCache) Invalidate(ctx context.Context, vaultID, userID string) {
	f.invalidated = append(f.invalidated, [2]string{vaultID, userID})
}

type recordedAudit struct {
	VaultID  string
	UserID   string
	Action   string
	Metadata map[string]any
}

type fakeAudit struct {
	records []recordedAudit
}

func (f *fakeAudit) Record(ctx context.Context, vaultID, userID, action string, metadata map[string]any) {
	f.records = append(f.records, recordedAudit{VaultID: vaultID, UserID: userID, Action: action, Metadata: metadata})
}

type fakeStorage struct {
	putKey string
	putURL string
	putErr error
	getURL string
	getErr error
	delErr error

	deletedKeys []string
}

func (f *fakeStorage) PresignedPutURL(ctx context.Context, vaultID string) (string, string, error) {
	return f.putKey, f.putURL, f.putErr
}
func (f *fakeStorage) PresignedGetURL(ctx context.Context, key string) (string, error) {
	return f.getURL, f.getErr
}
func (f *fakeStorage) DeleteObject(ctx context.Context, key string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deletedKeys = append(f.deletedKeys, key)
	return nil
}
