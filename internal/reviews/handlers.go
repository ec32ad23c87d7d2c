package reviews

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/niledreams/backend-travel/internal/common"
)

// Handler exposes trip review endpoints.
type Handler struct {
	Service *Service
}

// List handles GET /api/v1/trips/{slug}/reviews.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := common.AtoiDefault(r.URL.Query().Get("limit"), 20)
	offset := common.AtoiDefault(r.URL.Query().Get("offset"), 0)
	result, err := h.Service.List(r.Context(), chi.URLParam(r, "slug"), limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// Submit handles POST /api/v1/trips/{slug}/reviews.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	view, err := h.Service.Submit(r.Context(), chi.URLParam(r, "slug"), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": view})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unexpected error", nil)
}
