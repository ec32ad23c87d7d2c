package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/niledreams/backend-travel/internal/common"
)

// Handler exposes staff authentication endpoints.
type Handler struct {
	Service *Service
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/admin/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "auth service not configured", nil)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	result, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unexpected error", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}
