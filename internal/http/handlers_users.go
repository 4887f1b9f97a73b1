package http

import (
	"net/http"
	"time"

	"moneta/internal/auth"
	"moneta/internal/users"
)

type profileResponse struct {
	UserID           string `json:"userId"`
	Email            string `json:"email"`
	DisplayName      string `json:"displayName,omitempty"`
	CreatedAt        string `json:"createdAt"`
	DefaultInputMode string `json:"defaultInputMode"`
}

func toProfileResponse(p users.Profile) profileResponse {
	return profileResponse{
		UserID:           p.UID,
		Email:            p.Email,
		DisplayName:      p.DisplayName,
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
		DefaultInputMode: p.Settings.DefaultInputMode,
	}
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := s.users.Fetch(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

type updateProfileRequest struct {
	DisplayName string `json:"displayName"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	if err := s.users.UpdateProfile(r.Context(), uid, req.DisplayName); err != nil {
		writeError(w, r, err)
		return
	}
	profile, err := s.users.Fetch(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

type updateSettingsRequest struct {
	DefaultInputMode string `json:"defaultInputMode"`
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateSettingsRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.DefaultInputMode != "voice" && req.DefaultInputMode != "text" {
		badRequest(w, "defaultInputMode must be voice or text")
		return
	}

	if err := s.users.UpdateSettings(r.Context(), uid, users.Settings{DefaultInputMode: req.DefaultInputMode}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"defaultInputMode": req.DefaultInputMode})
}

// handlePurgeUser deletes the account and every document it owns. The login
// credentials go last, after the data purge has been verified.
func (s *Server) handlePurgeUser(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	profile, err := s.users.Fetch(ctx, uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.users.Purge(ctx, uid); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.auth.DeleteCredentials(ctx, profile.Email); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
