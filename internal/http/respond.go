package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"moneta/internal/accounts"
	"moneta/internal/auth"
	"moneta/internal/categories"
	"moneta/internal/core"
	"moneta/internal/ledger"
	"moneta/internal/parser"
	"moneta/internal/users"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError translates domain errors into HTTP statuses. Unrecognized
// errors become opaque 500s so internals never leak to clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, auth.ErrEmailTaken):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, accounts.ErrNotFound),
		errors.Is(err, categories.ErrNotFound),
		errors.Is(err, users.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrMissingAccount),
		errors.Is(err, core.ErrMissingCategory),
		errors.Is(err, core.ErrNoteTooLong),
		errors.Is(err, parser.ErrNoAmount),
		errors.Is(err, parser.ErrNoCategory):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, users.ErrPurgeIncomplete):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, ledger.ErrCommit):
		// The batch did not apply; the wrapped cause stays server-side.
		// Retrying without deduplication risks double-applying the entry.
		status, message = http.StatusServiceUnavailable, "commit failed, do not retry without deduplication"
	}

	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		slog.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}
