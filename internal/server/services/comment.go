package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/synscript/synscript/internal/common"
	"github.com/synscript/synscript/internal/server/models"
	"github.com/synscript/synscript/internal/server/repositories/repomanager"
)

// CommentService manages per-source comment threads. A thread is created
// lazily on first use and every lookup is vault-scoped, so thread ids
// cannot be walked across vaults.
type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	audit       auditRecorder
}

func NewCommentService(db *sql.DB, m repomanager.RepositoryManager, audit auditRecorder) *CommentService {
	return &CommentService{db: db, repomanager: m, audit: audit}
}

// Thread returns the source's comment thread, creating it if this is the
// first time anyone opens it.
func (s *CommentService) Thread(ctx context.Context, vaultID, sourceID string) (*models.CommentThread, error) {
	if _, err := s.repomanager.Sources(s.db).Get(ctx, vaultID, sourceID); err != nil {
		return nil, err
	}
	return s.repomanager.Comments(s.db).GetOrCreateThread(ctx, vaultID, sourceID)
}

func (s *CommentService) Add(ctx context.Context, vaultID, actorID, threadID, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: comment is required", common.ErrValidation)
	}

	repo := s.repomanager.Comments(s.db)

	thread, err := repo.FindThread(ctx, vaultID, threadID)
	if err != nil {
		return nil, err
	}

	c := &models.Comment{ThreadID: thread.ID, UserID: actorID, Body: body}
	if err := repo.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.audit.Record(ctx, vaultID, actorID, models.AuditCommentAdded,
		map[string]any{"thread_id": thread.ID, "source_id": thread.SourceID, "comment_id": c.ID})
	return c, nil
}

func (s *CommentService) List(ctx context.Context, vaultID, threadID string) ([]*models.Comment, error) {
	repo := s.repomanager.Comments(s.db)
	if _, err := repo.FindThread(ctx, vaultID, threadID); err != nil {
		return nil, err
	}
	return repo.ListByThread(ctx, threadID)
}
