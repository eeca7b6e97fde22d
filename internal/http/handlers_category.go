package http

import (
	"net/http"

	"mybalance/internal/log"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	cats, err := s.categories.List(ctx)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(categoriesJSON(cats)).Write(w)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError("not found").Write(w)
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(CategoryJSON(c)).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()
	created, err := s.categories.Create(ctx, req.Category())
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/category/"+formatID(created.ID)).
		Body(CategoryJSON(created)).
		Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError("not found").Write(w)
		return
	}
	var req CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	c := req.Category()
	c.ID = id

	ctx, cancel := s.withTimeout(r)
	defer cancel()
	updated, err := s.categories.Update(ctx, c)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	NewJSONResponse().Body(CategoryJSON(updated)).Write(w)
}

// handleDeleteCategory refuses with 409 while transactions reference the
// category.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError("not found").Write(w)
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()
	if err := s.categories.Delete(ctx, id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

