package controller

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront/apperrors"
	"storefront/logging"
	"storefront/models"
	"storefront/service"
)

// maxImageBytes bounds image uploads; the optimizer re-checks decoded size
const maxImageBytes = 10<<20 + 1

// ItemController handles HTTP requests for items
type ItemController struct {
	catalog *service.CatalogService
}

// NewItemController creates a new ItemController
func NewItemController(catalog *service.CatalogService) *ItemController {
	return &ItemController{catalog: catalog}
}

// ListItems handles GET /api/items?categoryId=&cursor=&page=&limit=
func (c *ItemController) ListItems(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, "ListItems", err)
		return
	}

	categoryID := strings.TrimSpace(r.URL.Query().Get("categoryId"))
	resp, err := c.catalog.ListItems(r.Context(), categoryID, page)
	if err != nil {
		writeError(w, "ListItems", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SearchItems handles GET /api/items/search?q=&limit=
func (c *ItemController) SearchItems(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, "SearchItems", err)
		return
	}

	items, err := c.catalog.SearchItems(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeError(w, "SearchItems", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// GetItem handles GET /api/items/{id}
func (c *ItemController) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := c.catalog.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "GetItem", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// GetItemBySlug handles GET /api/items/slug/{slug}
func (c *ItemController) GetItemBySlug(w http.ResponseWriter, r *http.Request) {
	item, err := c.catalog.GetItemBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, "GetItemBySlug", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Quote handles POST /api/items/{id}/quote
// Returns the resolved quantity, options price, label and line total of a
// configuration without touching the cart.
func (c *ItemController) Quote(w http.ResponseWriter, r *http.Request) {
	var req models.QuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "Quote", err)
		return
	}

	quote, err := c.catalog.Quote(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, "Quote", err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// GetItemImage handles GET /api/items/{id}/image?size=thumb|medium|original
func (c *ItemController) GetItemImage(w http.ResponseWriter, r *http.Request) {
	size := strings.TrimSpace(r.URL.Query().Get("size"))
	if size == "" {
		size = service.SizeMedium
	}

	data, err := c.catalog.ItemImage(r.Context(), chi.URLParam(r, "id"), size)
	if err != nil {
		writeError(w, "GetItemImage", err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Sugar.Errorf("❌ GetItemImage: Error writing response: %v", err)
	}
}

// LatestItem handles GET /admin/items/latest
// Returns the newest item of the caller so the admin form can prefill from it.
func (c *ItemController) LatestItem(w http.ResponseWriter, r *http.Request) {
	item, err := c.catalog.LatestItem(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, "LatestItem", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": item})
}

// CreateItem handles POST /admin/items
func (c *ItemController) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req models.ItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "CreateItem", err)
		return
	}

	item, err := c.catalog.CreateItem(r.Context(), &req, UserID(r.Context()))
	if err != nil {
		writeError(w, "CreateItem", err)
		return
	}
	logging.Sugar.Infof("✅ CreateItem: id=%s, slug=%s", item.ID, item.Slug)
	writeJSON(w, http.StatusCreated, item)
}

// UpdateItem handles PUT /admin/items/{id}
func (c *ItemController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req models.ItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "UpdateItem", err)
		return
	}

	item, err := c.catalog.UpdateItem(r.Context(), chi.URLParam(r, "id"), UserID(r.Context()), &req)
	if err != nil {
		writeError(w, "UpdateItem", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /admin/items/{id}
func (c *ItemController) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.catalog.DeleteItem(r.Context(), id, UserID(r.Context())); err != nil {
		writeError(w, "DeleteItem", err)
		return
	}
	logging.Sugar.Infof("✅ DeleteItem: id=%s", id)
	w.WriteHeader(http.StatusNoContent)
}

// UploadItemImage handles POST /admin/items/{id}/image
// Accepts the raw image bytes or a multipart form with an "image" file.
func (c *ItemController) UploadItemImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("image")
		if err != nil {
			writeError(w, "UploadItemImage", apperrors.InvalidField("image", "file is required"))
			return
		}
		defer file.Close()
		src = file
	}

	data, err := io.ReadAll(src)
	if err != nil {
		writeError(w, "UploadItemImage", apperrors.InvalidField("image", "image exceeds 10MB"))
		return
	}

	item, err := c.catalog.UploadImage(r.Context(), chi.URLParam(r, "id"), UserID(r.Context()), data)
	if err != nil {
		writeError(w, "UploadItemImage", err)
		return
	}
	logging.Sugar.Infof("✅ UploadItemImage: id=%s, bytes=%d", item.ID, len(data))
	writeJSON(w, http.StatusOK, item)
}
