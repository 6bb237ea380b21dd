package sources

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/synscript/synscript/internal/common"
	"github.com/synscript/synscript/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func sampleTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+sources\s*\(vault_id,\s*title,\s*url\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at,\s*updated_at\s*$`

	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
		AddRow("s-1", sampleTime(), sampleTime())
	mock.ExpectQuery(q).
		WithArgs("v-1", "paper", "https://example.com/paper").
		WillReturnRows(rows)

	got, err := repo.Create(context.Background(), &models.Source{VaultID: "v-1", Title: "paper", URL: "https://example.com/paper"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "s-1" {
		t.Fatalf("unexpected source: %+v", got)
	}
}

func TestGet_ScopedToVault(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,\s*vault_id,\s*title,\s*url,\s*COALESCE\(file_path,\s*''\),\s*created_at,\s*updated_at\s+FROM\s+sources\s+WHERE\s+id\s*=\s*\$1\s+AND\s+vault_id\s*=\s*\$2\s*$`

	rows := sqlmock.NewRows([]string{"id", "vault_id", "title", "url", "file_path", "created_at", "updated_at"}).
		AddRow("s-1", "v-1", "paper", "https://example.com", "vaults/v-1/k1", sampleTime(), sampleTime())
	mock.ExpectQuery(q).WithArgs("s-1", "v-1").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "v-1", "s-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.FilePath != "vaults/v-1/k1" {
		t.Fatalf("unexpected source: %+v", got)
	}
}

func TestGet_WrongVaultIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,\s*vault_id`).
		WithArgs("s-1", "v-other").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "v-other", "s-1")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestListByVault(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,\s*vault_id,\s*title,\s*url,\s*COALESCE\(file_path,\s*''\),\s*created_at,\s*updated_at\s+FROM\s+sources\s+WHERE\s+vault_id\s*=\s*\$1`

	rows := sqlmock.NewRows([]string{"id", "vault_id", "title", "url", "file_path", "created_at", "updated_at"}).
		AddRow("s-2", "v-1", "newer", "", "", sampleTime().Add(time.Hour), sampleTime().Add(time.Hour)).
		AddRow("s-1", "v-1", "older", "", "", sampleTime(), sampleTime())
	mock.ExpectQuery(q).WithArgs("v-1").WillReturnRows(rows)

	got, err := repo.ListByVault(context.Background(), "v-1")
	if err != nil {
		t.Fatalf("ListByVault error: %v", err)
	}
	if len(got) != 2 || got[0].Title != "newer" {
		t.Fatalf("unexpected sources: %+v", got)
	}
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+sources\s+SET\s+title\s*=\s*\$3,\s*url\s*=\s*\$4,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s+AND\s+vault_id\s*=\s*\$2\s*$`

	mock.ExpectExec(q).
		WithArgs("s-1", "v-1", "renamed", "https://example.com/v2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), "v-1", "s-1", "renamed", "https://example.com/v2"); err != nil {
		t.Fatalf("Update error: %v", err)
	}
}

func TestUpdate_MissingRowIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+sources`).
		WithArgs("ghost", "v-1", "renamed", "").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "v-1", "ghost", "renamed", "")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestSetFilePath_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+sources\s+SET\s+file_path\s*=\s*\$3,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s+AND\s+vault_id\s*=\s*\$2\s*$`

	mock.ExpectExec(q).
		WithArgs("s-1", "v-1", "vaults/v-1/k2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetFilePath(context.Background(), "v-1", "s-1", "vaults/v-1/k2"); err != nil {
		t.Fatalf("SetFilePath error: %v", err)
	}
}

func TestDelete_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+sources`).
		WithArgs("s-1", "v-1").
		WillReturnError(errors.New("db down"))

	err := repo.Delete(context.Background(), "v-1", "s-1")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
