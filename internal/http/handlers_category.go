package http

import "net/http"

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.categories.List(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	OK(w, r, categories)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	category, err := s.categories.Get(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	OK(w, r, category)
}
