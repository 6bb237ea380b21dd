package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/synscript/synscript/internal/server/models"
	"github.com/synscript/synscript/internal/server/rbac"
)

type commentPayload struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func toCommentPayload(c *models.Comment) commentPayload {
	return commentPayload{
		ID:        c.ID,
		ThreadID:  c.ThreadID,
		UserID:    c.UserID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	}
}

// handleCommentThread resolves the source's thread, creating it on first
// use, and returns its id for the comment routes.
func (s *Server) handleCommentThread(w http.ResponseWriter, r *http.Request) {
	vaultID, _, ok := s.requireRole(w, r, rbac.CanRead)
	if !ok {
		return
	}

	thread, err := s.comments.Thread(r.Context(), vaultID, mux.Vars(r)["sourceID"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"thread_id": thread.ID})
}

func (s *Server) handleCommentList(w http.ResponseWriter, r *http.Request) {
	vaultID, _, ok := s.requireRole(w, r, rbac.CanRead)
	if !ok {
		return
	}

	list, err := s.comments.List(r.Context(), vaultID, mux.Vars(r)["threadID"])
	if err != nil {
		respondError(w, err)
		return
	}

	payload := make([]commentPayload, 0, len(list))
	for _, c := range list {
		payload = append(payload, toCommentPayload(c))
	}
	respondJSON(w, http.StatusOK, map[string]any{"comments": payload})
}

func (s *Server) handleCommentCreate(w http.ResponseWriter, r *http.Request) {
	vaultID, claims, ok := s.requireRole(w, r, rbac.CanWrite)
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	c, err := s.comments.Add(r.Context(), vaultID, claims.UserID, mux.Vars(r)["threadID"], req.Body)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCommentPayload(c))
}
