package seo

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/niledreams/backend-travel/internal/common"
)

// Handler exposes the public resolver and admin CRUD endpoints.
type Handler struct {
	Service *Service
}

// Resolve handles GET /api/v1/seo/resolve?path=/...
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.Resolve(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": res})
}

// List handles GET /api/v1/admin/seo.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := common.AtoiDefault(r.URL.Query().Get("limit"), 100)
	offset := common.AtoiDefault(r.URL.Query().Get("offset"), 0)
	entries, err := h.Service.List(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": entries})
}

// Upsert handles POST /api/v1/admin/seo.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	var in EntryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	entry, err := h.Service.Upsert(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": entry})
}

// Delete handles DELETE /api/v1/admin/seo/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unexpected error", nil)
}
