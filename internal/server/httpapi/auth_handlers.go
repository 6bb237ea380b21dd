package httpapi

import (
	"net/http"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token            string   `json:"token"`
	RefreshToken     string   `json:"refresh_token"`
	AcceptedVaultIDs []string `json:"accepted_vault_ids,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	res, err := s.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, tokenResponse{
		Token:            res.Tokens.AccessToken,
		RefreshToken:     res.Tokens.RefreshToken,
		AcceptedVaultIDs: res.AcceptedVaultIDs,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	res, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, tokenResponse{
		Token:            res.Tokens.AccessToken,
		RefreshToken:     res.Tokens.RefreshToken,
		AcceptedVaultIDs: res.AcceptedVaultIDs,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, tokenResponse{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}
