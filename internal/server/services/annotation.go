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

// AnnotationService manages notes attached to sources.
type AnnotationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	audit       auditRecorder
}

func NewAnnotationService(db *sql.DB, m repomanager.RepositoryManager, audit auditRecorder) *AnnotationService {
	return &AnnotationService{db: db, repomanager: m, audit: audit}
}

// Add attaches a note to the source. The source is looked up through its
// vault, so annotating a source from another vault reads as not found.
func (s *AnnotationService) Add(ctx context.Context, vaultID, actorID, sourceID, note string) (*models.Annotation, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, fmt.Errorf("%w: note is required", common.ErrValidation)
	}

	if _, err := s.repomanager.Sources(s.db).Get(ctx, vaultID, sourceID); err != nil {
		return nil, err
	}

	a := &models.Annotation{SourceID: sourceID, UserID: actorID, Note: note}
	if err := s.repomanager.Annotations(s.db).Insert(ctx, a); err != nil {
		return nil, fmt.Errorf("creating annotation: %w", err)
	}

	s.audit.Record(ctx, vaultID, actorID, models.AuditAnnotationAdded,
		map[string]any{"source_id": sourceID, "annotation_id": a.ID})
	return a, nil
}

func (s *AnnotationService) List(ctx context.Context, vaultID, sourceID string) ([]*models.Annotation, error) {
	return s.repomanager.Annotations(s.db).ListBySource(ctx, vaultID, sourceID)
}
