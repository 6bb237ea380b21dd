package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/synscript/synscript/internal/server/models"
	"github.com/synscript/synscript/internal/server/rbac"
)

func (s *Server) handleMemberInvite(w http.ResponseWriter, r *http.Request) {
	vaultID, claims, ok := s.requireRole(w, r, rbac.CanInvite)
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := s.members.Invite(r.Context(), vaultID, claims.UserID, req.Email, models.Role(req.Role)); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleMemberRole(w http.ResponseWriter, r *http.Request) {
	vaultID, claims, ok := s.requireRole(w, r, rbac.CanInvite)
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	memberID := mux.Vars(r)["userID"]
	if err := s.members.UpdateRole(r.Context(), vaultID, claims.UserID, memberID, models.Role(req.Role)); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// handleMemberRemove lets owners remove anyone (but the owner) and lets
// any member remove themselves.
func (s *Server) handleMemberRemove(w http.ResponseWriter, r *http.Request) {
	memberID := mux.Vars(r)["userID"]

	vaultID, claims, ok := s.requireRole(w, r, func(role models.Role) bool {
		return rbac.CanInvite(role) || (rbac.CanRead(role) && memberID == requestClaims(r).UserID)
	})
	if !ok {
		return
	}

	if err := s.members.Remove(r.Context(), vaultID, claims.UserID, memberID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
