package http

import (
	"net/http"

	"moneta/internal/auth"
	"moneta/internal/core"
)

type accountRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
	Icon     string `json:"icon"`
	Color    string `json:"color"`
}

type accountResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Currency     string `json:"currency"`
	BalanceCents int64  `json:"balanceCents"`
	Balance      string `json:"balance"`
	Icon         string `json:"icon,omitempty"`
	Color        string `json:"color,omitempty"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:           a.ID,
		Name:         a.Name,
		Type:         string(a.Type),
		Currency:     a.Currency,
		BalanceCents: a.Balance.Cents,
		Balance:      a.Balance.String(),
		Icon:         a.Icon,
		Color:        a.Color,
	}
}

func (req accountRequest) toAccount(id string) core.Account {
	return core.Account{
		ID:       id,
		Name:     req.Name,
		Type:     core.AccountType(req.Type),
		Currency: req.Currency,
		Icon:     req.Icon,
		Color:    req.Color,
	}
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	list, err := s.accounts.List(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]accountResponse, len(list))
	for i, a := range list {
		out[i] = toAccountResponse(a)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req accountRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	account := req.toAccount("")
	if err := account.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	id, err := s.accounts.Create(r.Context(), uid, account)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.accounts.Get(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(created))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req accountRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	account := req.toAccount(r.PathValue("id"))
	if err := account.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.accounts.Update(r.Context(), uid, account); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.accounts.Get(r.Context(), uid, account.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(updated))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.accounts.Delete(r.Context(), uid, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
