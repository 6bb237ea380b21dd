package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/synscript/synscript/internal/common"
	"github.com/synscript/synscript/internal/logging"
	"github.com/synscript/synscript/internal/server/models"
	"github.com/synscript/synscript/internal/server/repositories/repomanager"
)

// ObjectStorage is the slice of the object store the source service needs:
// presigned transfer URLs and best-effort deletes.
type ObjectStorage interface {
	PresignedPutURL(ctx context.Context, vaultID string) (key string, url string, err error)
	PresignedGetURL(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// SourceService manages the sources inside a vault and their attached
// files in object storage.
type SourceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	storage     ObjectStorage
	audit       auditRecorder
	logger      logging.Logger
}

func NewSourceService(db *sql.DB, m repomanager.RepositoryManager, storage ObjectStorage, audit auditRecorder, logger logging.Logger) *SourceService {
	return &SourceService{db: db, repomanager: m, storage: storage, audit: audit, logger: logger.With("module", "sources")}
}

func (s *SourceService) List(ctx context.Context, vaultID string) ([]*models.Source, error) {
	return s.repomanager.Sources(s.db).ListByVault(ctx, vaultID)
}

func (s *SourceService) Get(ctx context.Context, vaultID, id string) (*models.Source, error) {
	return s.repomanager.Sources(s.db).Get(ctx, vaultID, id)
}

func (s *SourceService) Create(ctx context.Context, vaultID, actorID, title, url string) (*models.Source, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: source title is required", common.ErrValidation)
	}

	src, err := s.repomanager.Sources(s.db).Create(ctx, &models.Source{
		VaultID: vaultID,
		Title:   title,
		URL:     url,
	})
	if err != nil {
		return nil, fmt.Errorf("creating source: %w", err)
	}

	s.audit.Record(ctx, vaultID, actorID, models.AuditSourceAdded, map[string]any{"source_id": src.ID, "title": src.Title})
	return src, nil
}

func (s *SourceService) Update(ctx context.Context, vaultID, actorID, id, title, url string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: source title is required", common.ErrValidation)
	}

	if err := s.repomanager.Sources(s.db).Update(ctx, vaultID, id, title, url); err != nil {
		return err
	}

	s.audit.Record(ctx, vaultID, actorID, models.AuditSourceUpdated, map[string]any{"source_id": id, "title": title})
	return nil
}

// Delete removes the source row and then its attached object, if any. The
// object delete is best-effort: once the row is gone the source is deleted
// no matter what the store says, so a storage failure is only logged.
func (s *SourceService) Delete(ctx context.Context, vaultID, actorID, id string) error {
	repo := s.repomanager.Sources(s.db)

	src, err := repo.Get(ctx, vaultID, id)
	if err != nil {
		return err
	}

	if err := repo.Delete(ctx, vaultID, id); err != nil {
		return err
	}

	s.deleteObject(ctx, src.FilePath)
	s.audit.Record(ctx, vaultID, actorID, models.AuditSourceDeleted, map[string]any{"source_id": id, "title": src.Title})
	return nil
}

// BulkDelete removes the given sources in one statement and writes a
// single audit entry carrying the id set and the count. IDs that do not
// belong to the vault are ignored, not an error.
func (s *SourceService) BulkDelete(ctx context.Context, vaultID, actorID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no source ids given", common.ErrValidation)
	}

	repo := s.repomanager.Sources(s.db)

	targets, err := repo.SelectByIDs(ctx, vaultID, ids)
	if err != nil {
		return 0, fmt.Errorf("selecting sources: %w", err)
	}

	deleted, err := repo.DeleteBulk(ctx, vaultID, ids)
	if err != nil {
		return 0, fmt.Errorf("deleting sources: %w", err)
	}
	if deleted == 0 {
		return 0, nil
	}

	deletedIDs := make([]string, 0, len(targets))
	for _, t := range targets {
		deletedIDs = append(deletedIDs, t.ID)
		s.deleteObject(ctx, t.FilePath)
	}

	s.audit.Record(ctx, vaultID, actorID, models.AuditSourcesBulkDeleted,
		map[string]any{"source_ids": deletedIDs, "count": deleted})
	return deleted, nil
}

// UploadURL returns a fresh storage key and a presigned PUT URL for it.
// The key is attached to a source only after the client confirms the
// upload via AttachFile.
func (s *SourceService) UploadURL(ctx context.Context, vaultID string) (string, string, error) {
	return s.storage.PresignedPutURL(ctx, vaultID)
}

// AttachFile records the uploaded object's key on the source. A previously
// attached object is deleted from storage: one file per source.
func (s *SourceService) AttachFile(ctx context.Context, vaultID, actorID, id, key string) error {
	if key == "" {
		return fmt.Errorf("%w: storage key is required", common.ErrValidation)
	}

	repo := s.repomanager.Sources(s.db)

	src, err := repo.Get(ctx, vaultID, id)
	if err != nil {
		return err
	}

	if err := repo.SetFilePath(ctx, vaultID, id, key); err != nil {
		return err
	}

	if src.FilePath != key {
		s.deleteObject(ctx, src.FilePath)
	}

	s.audit.Record(ctx, vaultID, actorID, models.AuditFileUploaded, map[string]any{"source_id": id, "file_path": key})
	return nil
}

// FileURL returns a presigned GET URL for the source's attached object.
func (s *SourceService) FileURL(ctx context.Context, vaultID, id string) (string, error) {
	src, err := s.repomanager.Sources(s.db).Get(ctx, vaultID, id)
	if err != nil {
		return "", err
	}
	if src.FilePath == "" {
		return "", fmt.Errorf("%w: source has no file", common.ErrNotFound)
	}
	return s.storage.PresignedGetURL(ctx, src.FilePath)
}

func (s *SourceService) deleteObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		s.logger.Warn(ctx, "object delete failed", "key", key, "error", err)
	}
}
