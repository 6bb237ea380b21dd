package services

import (
	"context"
	"errors"
	"testing"

	"github.com/synscript/synscript/internal/common"
	"github.com/synscript/synscript/internal/server/models"
)

func TestCommentThread_CreatedOnFirstUse(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		s: &fakeSourcesRepo{getOut: &models.Source{ID: "s1", VaultID: "v1"}},
		c: &fakeCommentsRepo{threadOut: &models.CommentThread{ID: "t1", VaultID: "v1", SourceID: "s1"}},
	}
	svc := NewCommentService(db, rm, &fakeAudit{})

	thread, err := svc.Thread(context.Background(), "v1", "s1")
	if err != nil {
		t.Fatalf("Thread error: %v", err)
	}
	if thread.ID != "t1" {
		t.Fatalf("unexpected thread: %+v", thread)
	}
}

func TestCommentThread_UnknownSource(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		s: &fakeSourcesRepo{getErr: common.ErrNotFound},
		c: &fakeCommentsRepo{},
	}
	svc := NewCommentService(db, rm, &fakeAudit{})

	if _, err := svc.Thread(context.Background(), "v1", "sX"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCommentAdd_Audited(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		c: &fakeCommentsRepo{findOut: &models.CommentThread{ID: "t1", VaultID: "v1", SourceID: "s1"}},
	}
	audit := &fakeAudit{}
	svc := NewCommentService(db, rm, audit)

	c, err := svc.Add(context.Background(), "v1", "u1", "t1", " agreed, see the appendix ")
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if c.Body != "agreed, see the appendix" {
		t.Fatalf("body not trimmed: %q", c.Body)
	}
	if len(rm.c.inserted) != 1 {
		t.Fatalf("comment not inserted: %+v", rm.c.inserted)
	}
	if len(audit.records) != 1 || audit.records[0].Action != models.AuditCommentAdded {
		t.Fatalf("unexpected audit: %+v", audit.records)
	}
	if audit.records[0].Metadata["source_id"] != "s1" {
		t.Fatalf("source missing from metadata: %+v", audit.records[0].Metadata)
	}
}

func TestCommentAdd_EmptyBody(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	svc := NewCommentService(db, &fakeRepoManager{}, &fakeAudit{})

	if _, err := svc.Add(context.Background(), "v1", "u1", "t1", "   "); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCommentAdd_ThreadFromAnotherVault(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		c: &fakeCommentsRepo{findErr: common.ErrNotFound},
	}
	audit := &fakeAudit{}
	svc := NewCommentService(db, rm, audit)

	if _, err := svc.Add(context.Background(), "v1", "u1", "foreign-thread", "hi"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(rm.c.inserted) != 0 || len(audit.records) != 0 {
		t.Fatalf("nothing must be written for an unknown thread")
	}
}

func TestCommentList_ScopedToVault(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		c: &fakeCommentsRepo{findErr: common.ErrNotFound},
	}
	svc := NewCommentService(db, rm, &fakeAudit{})

	if _, err := svc.List(context.Background(), "v1", "foreign-thread"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCommentList(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		c: &fakeCommentsRepo{
			findOut: &models.CommentThread{ID: "t1", VaultID: "v1", SourceID: "s1"},
			listOut: []*models.Comment{{ID: "c1"}, {ID: "c2"}},
		},
	}
	svc := NewCommentService(db, rm, &fakeAudit{})

	list, err := svc.List(context.Background(), "v1", "t1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("unexpected list: %+v", list)
	}
}
