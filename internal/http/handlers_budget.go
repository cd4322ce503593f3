package http

import (
	"net/http"
	"strings"

	"spendwise/internal/analytics"
	"spendwise/internal/core"
	"spendwise/internal/log"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month != "" {
		if err := core.ValidateMonth(month); err != nil {
			writeError(w, r, log.OpList, err)
			return
		}
	}
	budgets, err := s.deps.Budgets.List(r.Context(), sessionFrom(r.Context()).UserID, month)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	NewResponse().JSON(budgets).Write(w)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	amount, err := core.ParseMoney(p.Get("amount"))
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	b, err := s.deps.Budgets.Set(r.Context(), sessionFrom(r.Context()).UserID, p.Get("category"), p.Get("month"), amount)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	NewResponse().JSON(b).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Budgets.Delete(r.Context(), sessionFrom(r.Context()).UserID, r.PathValue("key")); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}

type budgetProgressResponse struct {
	Month   string              `json:"month"`
	Budgets []core.BudgetStatus `json:"budgets"`
	Summary core.BudgetSummary  `json:"summary"`
}

func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonthParam(r.URL.Query(), s.now())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	userID := sessionFrom(r.Context()).UserID
	statuses, err := s.deps.Budgets.Progress(r.Context(), userID, month)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewResponse().JSON(budgetProgressResponse{
		Month:   month,
		Budgets: statuses,
		Summary: analytics.SummarizeBudgets(month, statuses),
	}).Write(w)
}
