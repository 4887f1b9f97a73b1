package http

import (
	"net/http"
	"strconv"
	"time"

	"moneta/internal/auth"
	"moneta/internal/core"
	"moneta/internal/stats"
)

type transactionRequest struct {
	Amount      string `json:"amount"` // decimal string, e.g. "12.50"
	AmountCents int64  `json:"amountCents,omitempty"`
	Date        string `json:"date"` // yyyy-MM-dd
	Note        string `json:"note"`
	AccountID   string `json:"accountId"`
	CategoryID  string `json:"categoryId"`
}

type transactionResponse struct {
	ID            string `json:"id"`
	AmountCents   int64  `json:"amountCents"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Date          string `json:"date"`
	CreatedAt     string `json:"createdAt"`
	Note          string `json:"note,omitempty"`
	AccountID     string `json:"accountId"`
	AccountName   string `json:"accountName"`
	CategoryID    string `json:"categoryId"`
	CategoryName  string `json:"categoryName"`
	CategoryIcon  string `json:"categoryIcon,omitempty"`
	CategoryColor string `json:"categoryColor,omitempty"`
	CategoryType  string `json:"categoryType"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:            tx.ID,
		AmountCents:   tx.Amount.Cents,
		Amount:        tx.Amount.String(),
		Currency:      tx.Currency,
		Date:          tx.Date.Format("2006-01-02"),
		CreatedAt:     tx.CreatedAt.Format(time.RFC3339),
		Note:          tx.Note,
		AccountID:     tx.AccountID,
		AccountName:   tx.AccountName,
		CategoryID:    tx.CategoryID,
		CategoryName:  tx.CategoryName,
		CategoryIcon:  tx.CategoryIcon,
		CategoryColor: tx.CategoryColor,
		CategoryType:  string(tx.CategoryType),
	}
}

// draftFromRequest builds the ledger draft. The amount can be given either
// as a decimal string or directly in cents.
func draftFromRequest(req transactionRequest) (core.TransactionDraft, error) {
	var amount core.Money
	if req.Amount != "" {
		parsed, err := core.ParseAmount(req.Amount)
		if err != nil {
			return core.TransactionDraft{}, err
		}
		amount = parsed
	} else {
		amount = core.Money{Cents: req.AmountCents}
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return core.TransactionDraft{}, core.ErrInvalidDate
	}

	return core.TransactionDraft{
		Amount:     amount,
		Date:       core.DateOf(date),
		Note:       req.Note,
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
	}, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	draft, err := draftFromRequest(req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	account, err := s.accounts.Get(ctx, uid, draft.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	category, err := s.categories.Get(ctx, uid, draft.CategoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := s.ledger.Apply(ctx, uid, draft, account, category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateStats(uid, stats.MonthKey(draft.Date))

	tx, err := s.ledger.Transaction(ctx, uid, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	draft, err := draftFromRequest(req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	oldTx, err := s.ledger.Transaction(ctx, uid, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	account, err := s.accounts.Get(ctx, uid, draft.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	category, err := s.categories.Get(ctx, uid, draft.CategoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	newID, err := s.ledger.Update(ctx, uid, oldTx, draft, account, category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateStats(uid, stats.MonthKey(oldTx.Date), stats.MonthKey(draft.Date))

	tx, err := s.ledger.Transaction(ctx, uid, newID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	tx, err := s.ledger.Transaction(ctx, uid, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.Reverse(ctx, uid, tx); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateStats(uid, stats.MonthKey(tx.Date))
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.ledger.Transaction(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	txs, err := s.ledger.RecentTransactions(r.Context(), uid, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionList(txs))
}

func (s *Server) handleTodayTransactions(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	txs, err := s.ledger.TodayTransactions(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionList(txs))
}

type breakdownEntry struct {
	CategoryID    string `json:"categoryId"`
	CategoryName  string `json:"categoryName"`
	CategoryIcon  string `json:"categoryIcon,omitempty"`
	CategoryColor string `json:"categoryColor,omitempty"`
	AmountCents   int64  `json:"amountCents"`
}

// handleTransactionBreakdown aggregates the most recent transactions per
// category. The window follows the recent view (?limit=, same default).
func (s *Server) handleTransactionBreakdown(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	txs, err := s.ledger.RecentTransactions(r.Context(), uid, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows := core.BreakdownByCategory(txs)
	out := make([]breakdownEntry, len(rows))
	for i, row := range rows {
		out[i] = breakdownEntry{
			CategoryID:    row.CategoryID,
			CategoryName:  row.Name,
			CategoryIcon:  row.Icon,
			CategoryColor: row.Color,
			AmountCents:   row.Amount.Cents,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type parseRequest struct {
	Text      string `json:"text"`
	AccountID string `json:"accountId"`
}

type parsedDraftResponse struct {
	AmountCents  int64  `json:"amountCents"`
	Date         string `json:"date"`
	Note         string `json:"note,omitempty"`
	AccountID    string `json:"accountId"`
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
}

// handleParseTransaction previews a draft parsed from free text. Nothing is
// committed; the client reviews the draft and posts it as a transaction.
func (s *Server) handleParseTransaction(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req parseRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	cats, err := s.categories.List(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	draft, err := s.parser.Parse(req.Text, cats)
	if err != nil {
		writeError(w, r, err)
		return
	}
	draft.AccountID = req.AccountID

	categoryName := ""
	for _, c := range cats {
		if c.ID == draft.CategoryID {
			categoryName = c.Name
			break
		}
	}

	writeJSON(w, http.StatusOK, parsedDraftResponse{
		AmountCents:  draft.Amount.Cents,
		Date:         draft.Date.Format("2006-01-02"),
		Note:         draft.Note,
		AccountID:    draft.AccountID,
		CategoryID:   draft.CategoryID,
		CategoryName: categoryName,
	})
}

func toTransactionList(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionResponse(tx)
	}
	return out
}

func (s *Server) invalidateStats(uid string, monthKeys ...string) {
	for _, key := range monthKeys {
		s.statsCache.Delete(uid + "|" + key)
	}
}
