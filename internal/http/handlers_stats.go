package http

import (
	"net/http"
	"sort"
	"time"

	"moneta/internal/auth"
	"moneta/internal/core"
	"moneta/internal/stats"
)

type categoryAmountResponse struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName,omitempty"`
	AmountCents  int64  `json:"amountCents"`
}

type monthStatsResponse struct {
	MonthKey     string `json:"monthKey"`
	Display      string `json:"display"`
	PrevMonthKey string `json:"prevMonthKey"`
	NextMonthKey string `json:"nextMonthKey,omitempty"`

	TotalExpenseCents int64 `json:"totalExpenseCents"`
	TotalIncomeCents  int64 `json:"totalIncomeCents"`
	NetCents          int64 `json:"netCents"`

	ExpenseByCategory []categoryAmountResponse `json:"expenseByCategory"`
	IncomeByCategory  []categoryAmountResponse `json:"incomeByCategory"`
	DailyExpense      map[string]int64         `json:"dailyExpense"`
}

func (s *Server) handleCurrentMonthStats(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	s.serveMonthStats(w, r, stats.MonthKeyOf(now.Year(), int(now.Month())))
}

func (s *Server) handleMonthStats(w http.ResponseWriter, r *http.Request) {
	s.serveMonthStats(w, r, r.PathValue("monthKey"))
}

func (s *Server) serveMonthStats(w http.ResponseWriter, r *http.Request, monthKey string) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	year, month, err := stats.ParseMonthKey(monthKey)
	if err != nil {
		badRequest(w, "invalid month key, want yyyy_MM")
		return
	}

	cacheKey := uid + "|" + monthKey
	bucket, hit := s.statsCache.Get(cacheKey)
	if !hit {
		bucket, err = s.ledger.MonthlyStats(r.Context(), uid, year, month)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.statsCache.Set(cacheKey, bucket)
	}

	names := s.categoryNames(r, uid)
	resp := monthStatsResponse{
		MonthKey:          bucket.MonthKey,
		Display:           stats.FormatMonthDisplay(monthKey),
		TotalExpenseCents: bucket.TotalExpense.Cents,
		TotalIncomeCents:  bucket.TotalIncome.Cents,
		NetCents:          bucket.TotalIncome.Cents - bucket.TotalExpense.Cents,
		ExpenseByCategory: toCategoryAmounts(bucket.ExpenseByCategory, names),
		IncomeByCategory:  toCategoryAmounts(bucket.IncomeByCategory, names),
		DailyExpense:      toCentsMap(bucket.DailyExpense),
	}
	if prev, err := stats.PrevMonthKey(monthKey); err == nil {
		resp.PrevMonthKey = prev
	}
	if next, err := stats.NextMonthKey(monthKey); err == nil && !stats.IsFutureMonth(next, time.Now()) {
		resp.NextMonthKey = next
	}

	writeJSON(w, http.StatusOK, resp)
}

// categoryNames is best effort; a bucket entry whose category was deleted
// keeps its id and simply has no name.
func (s *Server) categoryNames(r *http.Request, uid string) map[string]string {
	names := make(map[string]string)
	cats, err := s.categories.List(r.Context(), uid)
	if err != nil {
		return names
	}
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names
}

// toCategoryAmounts sorts descending by amount, ties by category id.
func toCategoryAmounts(m map[string]core.Money, names map[string]string) []categoryAmountResponse {
	out := make([]categoryAmountResponse, 0, len(m))
	for id, amount := range m {
		out = append(out, categoryAmountResponse{
			CategoryID:   id,
			CategoryName: names[id],
			AmountCents:  amount.Cents,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AmountCents != out[j].AmountCents {
			return out[i].AmountCents > out[j].AmountCents
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}

func toCentsMap(m map[string]core.Money) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v.Cents
	}
	return out
}
