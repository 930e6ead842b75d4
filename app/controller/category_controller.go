package controller

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront/logging"
	"storefront/models"
	"storefront/service"
)

// CategoryController handles HTTP requests for categories
type CategoryController struct {
	catalog *service.CatalogService
}

// NewCategoryController creates a new CategoryController
func NewCategoryController(catalog *service.CatalogService) *CategoryController {
	return &CategoryController{catalog: catalog}
}

// ListCategories handles GET /api/categories?cursor=&page=&limit=
func (c *CategoryController) ListCategories(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, "ListCategories", err)
		return
	}

	resp, err := c.catalog.ListCategories(r.Context(), page)
	if err != nil {
		writeError(w, "ListCategories", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SearchCategories handles GET /api/categories/search?q=&limit=
func (c *CategoryController) SearchCategories(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, "SearchCategories", err)
		return
	}

	cats, err := c.catalog.SearchCategories(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeError(w, "SearchCategories", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

// GetCategory handles GET /api/categories/{id}
func (c *CategoryController) GetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := c.catalog.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "GetCategory", err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// CreateCategory handles POST /admin/categories
func (c *CategoryController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "CreateCategory", err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	cat, err := c.catalog.CreateCategory(r.Context(), &req, UserID(r.Context()))
	if err != nil {
		writeError(w, "CreateCategory", err)
		return
	}
	logging.Sugar.Infof("✅ CreateCategory: id=%s, name=%s", cat.ID, cat.Name)
	writeJSON(w, http.StatusCreated, cat)
}

// UpdateCategory handles PUT /admin/categories/{id}
func (c *CategoryController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "UpdateCategory", err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	cat, err := c.catalog.UpdateCategory(r.Context(), chi.URLParam(r, "id"), UserID(r.Context()), &req)
	if err != nil {
		writeError(w, "UpdateCategory", err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// DeleteCategory handles DELETE /admin/categories/{id}
func (c *CategoryController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.catalog.DeleteCategory(r.Context(), id, UserID(r.Context())); err != nil {
		writeError(w, "DeleteCategory", err)
		return
	}
	logging.Sugar.Infof("✅ DeleteCategory: id=%s", id)
	w.WriteHeader(http.StatusNoContent)
}
