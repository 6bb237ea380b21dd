package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/synscript/synscript/internal/server/models"
	"github.com/synscript/synscript/internal/server/rbac"
)

type annotationPayload struct {
	ID        string    `json:"id"`
	SourceID  string    `json:"source_id"`
	UserID    string    `json:"user_id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

func toAnnotationPayload(a *models.Annotation) annotationPayload {
	return annotationPayload{
		ID:        a.ID,
		SourceID:  a.SourceID,
		UserID:    a.UserID,
		Note:      a.Note,
		CreatedAt: a.CreatedAt,
	}
}

func (s *Server) handleAnnotationList(w http.ResponseWriter, r *http.Request) {
	vaultID, _, ok := s.requireRole(w, r, rbac.CanRead)
	if !ok {
		return
	}

	list, err := s.annotations.List(r.Context(), vaultID, mux.Vars(r)["sourceID"])
	if err != nil {
		respondError(w, err)
		return
	}

	payload := make([]annotationPayload, 0, len(list))
	for _, a := range list {
		payload = append(payload, toAnnotationPayload(a))
	}
	respondJSON(w, http.StatusOK, map[string]any{"annotations": payload})
}

func (s *Server) handleAnnotationCreate(w http.ResponseWriter, r *http.Request) {
	vaultID, claims, ok := s.requireRole(w, r, rbac.CanWrite)
	if !ok {
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	a, err := s.annotations.Add(r.Context(), vaultID, claims.UserID, mux.Vars(r)["sourceID"], req.Note)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAnnotationPayload(a))
}
