package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/synscript/synscript/internal/server/models"
	"github.com/synscript/synscript/internal/server/rbac"
)

type sourcePayload struct {
	ID        string    `json:"id"`
	VaultID   string    `json:"vault_id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	FilePath  string    `json:"file_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toSourcePayload(src *models.Source) sourcePayload {
	return sourcePayload{
		ID:        src.ID,
		VaultID:   src.VaultID,
		Title:     src.Title,
		URL:       src.URL,
		FilePath:  src.FilePath,
		CreatedAt: src.CreatedAt,
		UpdatedAt: src.UpdatedAt,
	}
}

func (s *Server) handleSourceList(w http.ResponseWriter, r *http.Request) {
	vaultID, _, ok := s.requireRole(w, r, rbac.CanRead)
	if !ok {
		return
	}

	list, err := s.sources.List(r.Context(), vaultID)
	if err != nil {
		respondError(w, err)
		return
	}

	payload := make([]sourcePayload, 0, len(list))
	for _, src := range list {
		payload = append(payload, toSourcePayload(src))
	}
	respondJSON(w, http.StatusOK, map[string]any{"sources": payload})
}

func (s *Server) handleSourceCreate(w http.ResponseWriter, r *http.Request) {
	vaultID, claims, ok := s.requireRole(w, r, rbac.CanWrite)
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	src, err := s.sources.Create(r.Context(), vaultID, claims.UserID, req.Title, req.URL)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toSourcePayload(src))
}

func (s *Server) handleSourceUpdate(w http.ResponseWriter, r *http.Request) {
	vaultID, claims, ok := s.requireRole(w, r, rbac.CanWrite)
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	sourceID := mux.Vars(r)["sourceID"]
	if err := s.sources.Update(r.Context(), vaultID, claims.UserID, sourceID, req.Title, req.URL); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSourceDelete(w http.ResponseWriter, r *http.Request) {
	vaultID, claims, ok := s.requireRole(w, r, rbac.CanWrite)
	if !ok {
		return
	}

	sourceID := mux.Vars(r)["sourceID"]
	if err := s.sources.Delete(r.Context(), vaultID, claims.UserID, sourceID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSourceBulkDelete(w http.ResponseWriter, r *http.Request) {
	vaultID, claims, ok := s.requireRole(w, r, rbac.CanWrite)
	if !ok {
		return
	}

	var req struct {
		SourceIDs []string `json:"source_ids"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	n, err := s.sources.BulkDelete(r.Context(), vaultID, claims.UserID, req.SourceIDs)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": n})
}

func (s *Server) handleSourceUploadURL(w http.ResponseWriter, r *http.Request) {
	vaultID, _, ok := s.requireRole(w, r, rbac.CanWrite)
	if !ok {
		return
	}

	key, url, err := s.sources.UploadURL(r.Context(), vaultID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"key": key, "url": url})
}

func (s *Server) handleSourceAttachFile(w http.ResponseWriter, r *http.Request) {
	vaultID, claims, ok := s.requireRole(w, r, rbac.CanWrite)
	if !ok {
		return
	}

	var req struct {
		Key string `json:"key"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	sourceID := mux.Vars(r)["sourceID"]
	if err := s.sources.AttachFile(r.Context(), vaultID, claims.UserID, sourceID, req.Key); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSourceFileURL(w http.ResponseWriter, r *http.Request) {
	vaultID, _, ok := s.requireRole(w, r, rbac.CanRead)
	if !ok {
		return
	}

	sourceID := mux.Vars(r)["sourceID"]
	url, err := s.sources.FileURL(r.Context(), vaultID, sourceID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"url": url})
}
