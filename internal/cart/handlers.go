package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/niledreams/backend-travel/internal/common"
	"github.com/niledreams/backend-travel/internal/store"
)

type cartCtxKey struct{}

// CartFromContext returns the cart resolved by the cookie middleware.
func CartFromContext(ctx context.Context) (store.Cart, bool) {
	cart, ok := ctx.Value(cartCtxKey{}).(store.Cart)
	return cart, ok
}

// Handler wires the cart service to HTTP. The reward and quick-add endpoints
// keep their legacy response shapes; the rest of the cart surface uses the
// canonical data envelope.
type Handler struct {
	Service        *Service
	CookieName     string
	CookieTTL      time.Duration
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite
}

func (h *Handler) cookieName() string {
	if h.CookieName == "" {
		return "bcart"
	}
	return h.CookieName
}

// WithCart resolves the cart for the request's cookie token, creating a cart
// and issuing the cookie when none exists yet.
func (h *Handler) WithCart(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if cookie, err := r.Cookie(h.cookieName()); err == nil {
			token = cookie.Value
		}
		cart, created, err := h.Service.EnsureCart(r.Context(), token)
		if err != nil {
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to resolve cart", nil)
			return
		}
		if created || cart.Token != token {
			h.setCartCookie(w, cart.Token)
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), cartCtxKey{}, cart)))
	})
}

func (h *Handler) setCartCookie(w http.ResponseWriter, token string) {
	ttl := h.CookieTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	sameSite := h.CookieSameSite
	if sameSite == http.SameSiteDefaultMode {
		sameSite = http.SameSiteLaxMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName(),
		Value:    token,
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: sameSite,
	})
}

// Get handles GET /api/v1/cart.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cart, ok := CartFromContext(r.Context())
	if !ok {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart not resolved", nil)
		return
	}
	summary, err := h.Service.Summarize(r.Context(), cart)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"cart_summary": summary}})
}

// UpdateContact handles PATCH /api/v1/cart/contact.
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	cart, ok := CartFromContext(r.Context())
	if !ok {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart not resolved", nil)
		return
	}
	var in ContactInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return
	}
	summary, err := h.Service.UpdateContact(r.Context(), cart, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"cart_summary": summary}})
}

// CreateEntry handles POST /api/v1/cart/entries.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	cart, ok := CartFromContext(r.Context())
	if !ok {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart not resolved", nil)
		return
	}
	var in AddEntryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return
	}
	summary, err := h.Service.AddEntry(r.Context(), cart, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": map[string]any{"cart_summary": summary}})
}

// UpdateEntry handles PATCH /api/v1/cart/entries/{entryID}.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	cart, ok := CartFromContext(r.Context())
	if !ok {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart not resolved", nil)
		return
	}
	var in UpdateEntryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return
	}
	summary, err := h.Service.UpdateEntry(r.Context(), cart, chi.URLParam(r, "entryID"), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"cart_summary": summary}})
}

// DeleteEntry handles DELETE /api/v1/cart/entries/{entryID}.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	cart, ok := CartFromContext(r.Context())
	if !ok {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart not resolved", nil)
		return
	}
	summary, err := h.Service.RemoveEntry(r.Context(), cart, chi.URLParam(r, "entryID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"cart_summary": summary}})
}

// Rewards handles GET /api/v1/rewards.
func (h *Handler) Rewards(w http.ResponseWriter, r *http.Request) {
	cart, ok := CartFromContext(r.Context())
	if !ok {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart not resolved", nil)
		return
	}
	view, err := h.Service.RewardsOverview(r.Context(), cart)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// ApplyReward handles POST /api/v1/cart/reward/apply.
func (h *Handler) ApplyReward(w http.ResponseWriter, r *http.Request) {
	cart, ok := CartFromContext(r.Context())
	if !ok {
		writeCartError(w, http.StatusInternalServerError, "unable to resolve cart")
		return
	}
	var in ApplyRewardInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeCartError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	summary, err := h.Service.ApplyReward(r.Context(), cart, in)
	if err != nil {
		h.writeLegacyError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"cart_summary": summary})
}

// RemoveReward handles POST /api/v1/cart/reward/remove.
func (h *Handler) RemoveReward(w http.ResponseWriter, r *http.Request) {
	cart, ok := CartFromContext(r.Context())
	if !ok {
		writeCartError(w, http.StatusInternalServerError, "unable to resolve cart")
		return
	}
	var in struct {
		EntryID string `json:"entry_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeCartError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	summary, err := h.Service.RemoveReward(r.Context(), cart, in.EntryID)
	if err != nil {
		h.writeLegacyError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"cart_summary": summary})
}

// QuickAdd handles POST /api/v1/cart/quick-add/{tripSlug}. The payload is
// form-encoded, matching the quick-add buttons on trip cards.
func (h *Handler) QuickAdd(w http.ResponseWriter, r *http.Request) {
	cart, ok := CartFromContext(r.Context())
	if !ok {
		writeCartError(w, http.StatusInternalServerError, "unable to resolve cart")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeCartError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	in := QuickAddInput{
		Date:   r.PostFormValue("date"),
		Adults: common.AtoiDefault(r.PostFormValue("adults"), 0),
	}
	result, err := h.Service.QuickAdd(r.Context(), cart, chi.URLParam(r, "tripSlug"), in)
	if err != nil {
		h.writeLegacyError(w, err)
		return
	}
	payload := map[string]any{
		"cart_summary": result.Summary,
		"in_cart":      result.InCart,
		"trip_id":      result.TripID,
	}
	if result.ToastMessage != "" {
		payload["toast_message"] = result.ToastMessage
	}
	if len(result.Services) > 0 {
		payload["quick_add_services"] = result.Services
	}
	if len(result.Recommendations) > 0 {
		payload["quick_add_recommendations"] = result.Recommendations
	}
	common.JSON(w, http.StatusOK, payload)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unexpected error", nil)
}

// writeLegacyError renders the flat error shape the reward and quick-add
// clients expect.
func (h *Handler) writeLegacyError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		writeCartError(w, appErr.HTTPStatus, appErr.Message)
		return
	}
	writeCartError(w, http.StatusInternalServerError, "Unable to update your booking list right now.")
}

func writeCartError(w http.ResponseWriter, status int, message string) {
	common.JSON(w, status, map[string]string{"error": message})
}
