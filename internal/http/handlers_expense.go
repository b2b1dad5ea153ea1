package http

import (
	"net/http"

	"finbot/internal/core"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in core.ExpenseCreate
	if err := DecodeJSON(w, r, &in); err != nil {
		WriteError(w, r, err)
		return
	}

	expense, err := s.expenses.Create(r.Context(), in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	OK(w, r, expense)
}

// handleListExpenses serves GET /expenses?offset=&limit=. The limit is
// clamped to core.MaxPageLimit.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	page, err := ParsePageParams(r.URL.Query())
	if err != nil {
		WriteError(w, r, err)
		return
	}

	expenses, err := s.expenses.List(r.Context(), page)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	OK(w, r, expenses)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	expense, err := s.expenses.Get(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	OK(w, r, expense)
}

func (s *Server) handleListUserExpenses(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	expenses, err := s.expenses.ListByUser(r.Context(), userID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	OK(w, r, expenses)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var in core.ExpenseUpdate
	if err := DecodeJSON(w, r, &in); err != nil {
		WriteError(w, r, err)
		return
	}

	expense, err := s.expenses.Update(r.Context(), id, in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	OK(w, r, expense)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := s.expenses.Delete(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}
	Acknowledge(w, r)
}
