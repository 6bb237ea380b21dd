package vaults

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

	q := `(?s)^\s*INSERT\s+INTO\s+vaults\s*\(name,\s*description,\s*owner_id\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at,\s*updated_at\s*$`

	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
		AddRow("v-1", sampleTime(), sampleTime())
	mock.ExpectQuery(q).
		WithArgs("research", "shared notes", "u-1").
		WillReturnRows(rows)

	got, err := repo.Create(context.Background(), &models.Vault{Name: "research", Description: "shared notes", OwnerID: "u-1"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "v-1" || got.Name != "research" {
		t.Fatalf("unexpected vault: %+v", got)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+vaults`).
		WithArgs("research", "", "u-1").
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Vault{Name: "research", OwnerID: "u-1"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGet_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,\s*name,\s*description,\s*owner_id,\s*created_at,\s*updated_at\s+FROM\s+vaults\s+WHERE\s+id\s*=\s*\$1\s*$`

	rows := sqlmock.NewRows([]string{"id", "name", "description", "owner_id", "created_at", "updated_at"}).
		AddRow("v-1", "research", "", "u-1", sampleTime(), sampleTime())
	mock.ExpectQuery(q).WithArgs("v-1").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "v-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.OwnerID != "u-1" {
		t.Fatalf("unexpected vault: %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,\s*name`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+vaults\s+SET\s+name\s*=\s*\$2,\s*description\s*=\s*\$3,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).
		WithArgs("v-1", "renamed", "new desc").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), "v-1", "renamed", "new desc"); err != nil {
		t.Fatalf("Update error: %v", err)
	}
}

func TestUpdate_MissingRowIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+vaults`).
		WithArgs("ghost", "renamed", "").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "ghost", "renamed", "")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*DELETE\s+FROM\s+vaults\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).
		WithArgs("v-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "v-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestListForUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+v\.id,\s*v\.name,\s*v\.description,\s*v\.owner_id,\s*v\.created_at,\s*v\.updated_at\s+FROM\s+vaults\s+v\s+JOIN\s+vault_members\s+m\s+ON\s+m\.vault_id\s*=\s*v\.id\s+WHERE\s+m\.user_id\s*=\s*\$1`

	rows := sqlmock.NewRows([]string{"id", "name", "description", "owner_id", "created_at", "updated_at"}).
		AddRow("v-2", "later", "", "u-1", sampleTime(), sampleTime().Add(time.Hour)).
		AddRow("v-1", "earlier", "", "u-2", sampleTime(), sampleTime())
	mock.ExpectQuery(q).WithArgs("u-1").WillReturnRows(rows)

	got, err := repo.ListForUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListForUser error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "v-2" {
		t.Fatalf("unexpected vaults: %+v", got)
	}
}
