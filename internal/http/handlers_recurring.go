package http

import (
	"net/http"

	"spendwise/internal/log"
)

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Recurring.ListWithStatus(r.Context(), sessionFrom(r.Context()).UserID)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	NewResponse().JSON(list).Write(w)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(r)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	fields, err := p.TemplateFields()
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	t, err := s.deps.Recurring.Create(r.Context(), sessionFrom(r.Context()).UserID, fields)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(t).Write(w)
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	fields, err := p.TemplateFields()
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	t, found, err := s.deps.Recurring.Update(r.Context(), sessionFrom(r.Context()).UserID, r.PathValue("id"), fields)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	if !found {
		NotFoundError("recurring expense not found").Write(w)
		return
	}
	NewResponse().JSON(t).Write(w)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Recurring.Delete(r.Context(), sessionFrom(r.Context()).UserID, r.PathValue("id")); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleToggleRecurring(w http.ResponseWriter, r *http.Request) {
	t, found, err := s.deps.Recurring.ToggleActive(r.Context(), sessionFrom(r.Context()).UserID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	if !found {
		NotFoundError("recurring expense not found").Write(w)
		return
	}
	NewResponse().JSON(t).Write(w)
}

func (s *Server) handleMaterializeRecurring(w http.ResponseWriter, r *http.Request) {
	e, found, err := s.deps.Recurring.Materialize(r.Context(), sessionFrom(r.Context()).UserID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, log.OpMaterialize, err)
		return
	}
	if !found {
		NotFoundError("recurring expense not found").Write(w)
		return
	}
	s.expensesCreated.Add(1)
	NewResponse().Status(http.StatusCreated).JSON(e).Write(w)
}
