package httpapi

import (
	"net/http"
	"time"

	"github.com/synscript/synscript/internal/common"
	"github.com/synscript/synscript/internal/server/models"
	"github.com/synscript/synscript/internal/server/rbac"
)

type vaultPayload struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toVaultPayload(v *models.Vault) vaultPayload {
	return vaultPayload{
		ID:          v.ID,
		Name:        v.Name,
		Description: v.Description,
		OwnerID:     v.OwnerID,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

type memberPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func (s *Server) handleVaultList(w http.ResponseWriter, r *http.Request) {
	claims := requestClaims(r)
	if claims == nil {
		respondError(w, common.ErrUnauthorized)
		return
	}

	list, err := s.vaults.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, err)
		return
	}

	payload := make([]vaultPayload, 0, len(list))
	for _, v := range list {
		payload = append(payload, toVaultPayload(v))
	}
	respondJSON(w, http.StatusOK, map[string]any{"vaults": payload})
}

func (s *Server) handleVaultCreate(w http.ResponseWriter, r *http.Request) {
	claims := requestClaims(r)
	if claims == nil {
		respondError(w, common.ErrUnauthorized)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	v, err := s.vaults.Create(r.Context(), claims.UserID, req.Name, req.Description)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toVaultPayload(v))
}

// handleVaultGet returns the vault, its member list and the presence
// snapshot in one response, so opening a vault costs a single request.
func (s *Server) handleVaultGet(w http.ResponseWriter, r *http.Request) {
	vaultID, _, ok := s.requireRole(w, r, rbac.CanRead)
	if !ok {
		return
	}

	v, err := s.vaults.Get(r.Context(), vaultID)
	if err != nil {
		respondError(w, err)
		return
	}

	memberList, err := s.members.List(r.Context(), vaultID)
	if err != nil {
		respondError(w, err)
		return
	}
	memberPayloads := make([]memberPayload, 0, len(memberList))
	for _, m := range memberList {
		memberPayloads = append(memberPayloads, memberPayload{
			UserID: m.UserID,
			Email:  m.Email,
			Role:   string(m.Role),
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"vault":    toVaultPayload(v),
		"members":  memberPayloads,
		"presence": s.presence.Snapshot(vaultID),
	})
}

// handleVaultUpdate renames or redescribes the vault, owner-only:
// contributors write content, not the vault's identity.
func (s *Server) handleVaultUpdate(w http.ResponseWriter, r *http.Request) {
	vaultID, claims, ok := s.requireRole(w, r, rbac.CanDeleteVault)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := s.vaults.Update(r.Context(), claims.UserID, vaultID, req.Name, req.Description); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleVaultDelete(w http.ResponseWriter, r *http.Request) {
	vaultID, claims, ok := s.requireRole(w, r, rbac.CanDeleteVault)
	if !ok {
		return
	}

	if err := s.vaults.Delete(r.Context(), claims.UserID, vaultID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
