package http

import (
	"net/http"

	"spendwise/internal/log"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilterQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	list, err := s.deps.Expenses.Filter(r.Context(), sessionFrom(r.Context()).UserID, filter)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	NewResponse().JSON(list).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(r)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	fields, err := p.ExpenseFields()
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	e, err := s.deps.Expenses.Create(r.Context(), sessionFrom(r.Context()).UserID, fields)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	s.expensesCreated.Add(1)
	NewResponse().Status(http.StatusCreated).
		Header("Location", "/api/expenses/"+e.ID).
		JSON(e).Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	fields, err := p.ExpenseFields()
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	e, found, err := s.deps.Expenses.Update(r.Context(), sessionFrom(r.Context()).UserID, r.PathValue("id"), fields)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	if !found {
		NotFoundError("expense not found").Write(w)
		return
	}
	NewResponse().JSON(e).Write(w)
}

// handleDeleteExpense answers 204 whether or not the id existed.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Expenses.Delete(r.Context(), sessionFrom(r.Context()).UserID, r.PathValue("id")); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}
