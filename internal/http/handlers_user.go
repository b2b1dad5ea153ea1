package http

import (
	"net/http"
	"strconv"

	"finbot/internal/core"
)

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in core.UserCreate
	if err := DecodeJSON(w, r, &in); err != nil {
		WriteError(w, r, err)
		return
	}

	user, err := s.users.Create(r.Context(), in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	OK(w, r, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	OK(w, r, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	user, err := s.users.Get(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	OK(w, r, user)
}

func (s *Server) handleGetUserByTelegramID(w http.ResponseWriter, r *http.Request) {
	telegramID, err := strconv.ParseInt(r.PathValue("telegram_id"), 10, 64)
	if err != nil || telegramID <= 0 {
		WriteError(w, r, core.Invalid("telegram_id", "telegram_id must be a positive integer"))
		return
	}

	user, err := s.users.GetByTelegramID(r.Context(), telegramID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	OK(w, r, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var in core.UserUpdate
	if err := DecodeJSON(w, r, &in); err != nil {
		WriteError(w, r, err)
		return
	}

	user, err := s.users.Update(r.Context(), id, in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	OK(w, r, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}
	Acknowledge(w, r)
}
