package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/niledreams/backend-travel/internal/common"
)

// Handler exposes public catalog endpoints.
type Handler struct {
	Service *Service
}

// Trips handles GET /api/v1/trips with filters and pagination.
func (h *Handler) Trips(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	params, err := h.Service.ParseListParams(r.URL.Query())
	if err != nil {
		h.writeError(w, err)
		return
	}
	cards, err := h.Service.ListTrips(r.Context(), params)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if cards == nil {
		cards = []TripCard{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": cards})
}

// TripDetail handles GET /api/v1/trips/{slug}.
func (h *Handler) TripDetail(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	detail, err := h.Service.GetTripDetail(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": detail})
}

// Related handles GET /api/v1/trips/{slug}/related.
func (h *Handler) Related(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	detail, err := h.Service.GetTripDetail(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": detail.Related})
}

// Destinations handles GET /api/v1/destinations.
func (h *Handler) Destinations(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	dests, err := h.Service.Destinations(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": dests})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unexpected error", nil)
}
