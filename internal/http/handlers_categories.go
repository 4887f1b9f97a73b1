package http

import (
	"net/http"

	"moneta/internal/auth"
	"moneta/internal/core"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Order int    `json:"order"`
}

type categoryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
	Order int    `json:"order"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:    c.ID,
		Name:  c.Name,
		Type:  string(c.Type),
		Icon:  c.Icon,
		Color: c.Color,
		Order: c.Order,
	}
}

func (req categoryRequest) toCategory(id string) core.Category {
	return core.Category{
		ID:    id,
		Name:  req.Name,
		Type:  core.CategoryType(req.Type),
		Icon:  req.Icon,
		Color: req.Color,
		Order: req.Order,
	}
}

// handleListCategories lists all categories, optionally filtered with
// ?type=expense or ?type=income.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var list []core.Category
	if typ := r.URL.Query().Get("type"); typ != "" {
		categoryType := core.CategoryType(typ)
		if !categoryType.Valid() {
			badRequest(w, "invalid category type")
			return
		}
		list, err = s.categories.ListByType(r.Context(), uid, categoryType)
	} else {
		list, err = s.categories.List(r.Context(), uid)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]categoryResponse, len(list))
	for i, c := range list {
		out[i] = toCategoryResponse(c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	category := req.toCategory("")
	if err := category.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	id, err := s.categories.Create(r.Context(), uid, category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.categories.Get(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(created))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	category := req.toCategory(r.PathValue("id"))
	if err := category.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.categories.Update(r.Context(), uid, category); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.categories.Get(r.Context(), uid, category.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(updated))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.categories.Delete(r.Context(), uid, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
