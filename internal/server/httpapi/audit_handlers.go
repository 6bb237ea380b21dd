package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/synscript/synscript/internal/common"
	"github.com/synscript/synscript/internal/server/rbac"
)

type auditEntryPayload struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id,omitempty"`
	Action    string         `json:"action"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// handleAuditList serves the vault's audit trail, readable by every
// member. JSON by default with keyset pagination (limit, before);
// format=csv streams the full trail as a download instead.
// Non-members get 403 here, not the usual 404: the audit endpoint's
// contract distinguishes "no session" (401) from "not a member" (403).
func (s *Server) handleAuditList(w http.ResponseWriter, r *http.Request) {
	vaultID, _, ok := s.requireMemberRole(w, r, rbac.CanRead)
	if !ok {
		return
	}

	q := r.URL.Query()

	if q.Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", "audit-log-"+vaultID+".csv"))
		if err := s.audit.WriteCSV(r.Context(), vaultID, w); err != nil {
			s.logger.Error(r.Context(), "audit csv export failed", "vault_id", vaultID, "error", err)
		}
		return
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, fmt.Errorf("%w: invalid limit", common.ErrValidation))
			return
		}
		limit = n
	}

	var before time.Time
	if raw := q.Get("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, fmt.Errorf("%w: before must be RFC 3339", common.ErrValidation))
			return
		}
		before = t
	}

	entries, err := s.audit.List(r.Context(), vaultID, limit, before)
	if err != nil {
		respondError(w, err)
		return
	}

	payload := make([]auditEntryPayload, 0, len(entries))
	for _, e := range entries {
		payload = append(payload, auditEntryPayload{
			ID:        e.ID,
			UserID:    e.UserID,
			Action:    e.Action,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"entries": payload})
}
