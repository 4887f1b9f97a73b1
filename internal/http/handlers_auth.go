package http

import (
	"net/http"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// handleRegister creates credentials, a profile and the default account and
// category set, then returns a session token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	ctx := r.Context()
	uid, err := s.auth.Register(ctx, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := s.users.CreateProfile(ctx, uid, req.Email, req.DisplayName); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.accounts.SeedDefaults(ctx, uid); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.categories.SeedDefaults(ctx, uid); err != nil {
		writeError(w, r, err)
		return
	}

	token, _, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, UserID: uid})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	token, uid, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, UserID: uid})
}
