package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/niledreams/backend-travel/internal/common"
)

// Middleware wires staff authentication into HTTP handlers.
type Middleware struct {
	Service *Service
}

// RequireStaff enforces that a valid staff token is present.
func (m Middleware) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Service == nil {
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "auth service not configured", nil)
			return
		}
		token := extractBearer(r)
		if token == "" {
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
			return
		}
		staffID, err := m.Service.ParseAccessToken(token)
		if err != nil {
			var appErr *common.AppError
			if errors.As(err, &appErr) {
				common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
				return
			}
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(common.WithStaffID(r.Context(), staffID)))
	})
}

func extractBearer(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
