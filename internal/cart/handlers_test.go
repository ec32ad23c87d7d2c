package cart

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(svc *Service) http.Handler {
	h := &Handler{Service: svc, CookieName: "bcart"}
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.WithCart)
			r.Get("/cart", h.Get)
			r.Patch("/cart/contact", h.UpdateContact)
			r.Post("/cart/entries", h.CreateEntry)
			r.Patch("/cart/entries/{entryID}", h.UpdateEntry)
			r.Delete("/cart/entries/{entryID}", h.DeleteEntry)
			r.Post("/cart/reward/apply", h.ApplyReward)
			r.Post("/cart/reward/remove", h.RemoveReward)
			r.Post("/cart/quick-add/{tripSlug}", h.QuickAdd)
			r.Get("/rewards", h.Rewards)
		})
	})
	return r
}

type client struct {
	t      *testing.T
	router http.Handler
	cookie *http.Cookie
}

func (c *client) do(method, path, contentType string, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "bcart" {
			c.cookie = cookie
		}
	}
	return rec
}

func (c *client) json(method, path, body string) *httptest.ResponseRecorder {
	return c.do(method, path, "application/json", body)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGetCartIssuesCookieAndEnvelope(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	c := &client{t: t, router: newTestRouter(newTestService(repo))}

	rec := c.json(http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, c.cookie)
	require.NotEmpty(t, c.cookie.Value)

	body := decodeBody(t, rec)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	summary, ok := data["cart_summary"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(0), summary["count"])

	// The same cookie resolves the same cart on the next request.
	first := c.cookie.Value
	c.json(http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, first, c.cookie.Value)
}

func TestRewardApplyLegacyShape(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	c := &client{t: t, router: newTestRouter(newTestService(repo, goldPhase()))}

	rec := c.json(http.MethodPost, "/api/v1/cart/entries",
		`{"trip_slug":"nile-cruise","travel_date":"2026-04-01","adults":6}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody(t, rec)
	summary := created["data"].(map[string]any)["cart_summary"].(map[string]any)
	entries := summary["entries"].([]any)
	entryID := entries[0].(map[string]any)["id"].(string)

	rec = c.json(http.MethodPost, "/api/v1/cart/reward/apply",
		`{"entry_id":"`+entryID+`","phase_id":"phase-gold","trip_id":"trip-nile"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	applied, ok := body["cart_summary"].(map[string]any)
	require.True(t, ok, "reward routes respond with a top-level cart_summary")
	require.Equal(t, float64(60000), applied["discount_total_cents"])
	require.Equal(t, "5,400.00", applied["total_display"])
}

func TestRewardApplyErrorIsFlatString(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	phase := goldPhase()
	phase.ThresholdCents = 10000000
	c := &client{t: t, router: newTestRouter(newTestService(repo, phase))}

	rec := c.json(http.MethodPost, "/api/v1/cart/entries",
		`{"trip_slug":"nile-cruise","travel_date":"2026-04-01","adults":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody(t, rec)
	summary := created["data"].(map[string]any)["cart_summary"].(map[string]any)
	entryID := summary["entries"].([]any)[0].(map[string]any)["id"].(string)

	rec = c.json(http.MethodPost, "/api/v1/cart/reward/apply",
		`{"entry_id":"`+entryID+`","phase_id":"phase-gold"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	msg, ok := body["error"].(string)
	require.True(t, ok, "reward errors are flat strings")
	require.Contains(t, msg, "not unlocked")
}

func TestRewardRemoveLegacyShape(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	c := &client{t: t, router: newTestRouter(newTestService(repo, goldPhase()))}

	rec := c.json(http.MethodPost, "/api/v1/cart/entries",
		`{"trip_slug":"nile-cruise","travel_date":"2026-04-01","adults":6}`)
	created := decodeBody(t, rec)
	summary := created["data"].(map[string]any)["cart_summary"].(map[string]any)
	entryID := summary["entries"].([]any)[0].(map[string]any)["id"].(string)

	c.json(http.MethodPost, "/api/v1/cart/reward/apply",
		`{"entry_id":"`+entryID+`","phase_id":"phase-gold"}`)
	rec = c.json(http.MethodPost, "/api/v1/cart/reward/remove",
		`{"entry_id":"`+entryID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	removed := body["cart_summary"].(map[string]any)
	require.Equal(t, float64(0), removed["discount_total_cents"])
}

func TestQuickAddResponseFields(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	c := &client{t: t, router: newTestRouter(newTestService(repo))}

	form := url.Values{"adults": {"2"}}
	rec := c.do(http.MethodPost, "/api/v1/cart/quick-add/nile-cruise",
		"application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, true, body["in_cart"])
	require.Equal(t, "trip-nile", body["trip_id"])
	require.Contains(t, body["toast_message"], "added to your booking list")
	require.Contains(t, body, "cart_summary")
	require.Contains(t, body, "quick_add_services")
	require.Contains(t, body, "quick_add_recommendations")

	recs := body["quick_add_recommendations"].([]any)
	require.Len(t, recs, 1)
	require.Equal(t, "pyramids-day-tour", recs[0].(map[string]any)["slug"])
}

func TestQuickAddUnknownTrip(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	c := &client{t: t, router: newTestRouter(newTestService(repo))}

	rec := c.do(http.MethodPost, "/api/v1/cart/quick-add/atlantis",
		"application/x-www-form-urlencoded", "adults=2")
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "trip not found", body["error"])
}

func TestDeleteEntryCanonicalError(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	c := &client{t: t, router: newTestRouter(newTestService(repo))}

	rec := c.json(http.MethodDelete, "/api/v1/cart/entries/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok, "data routes use the structured error body")
	require.Equal(t, "NOT_FOUND", errBody["code"])
}

func TestRewardsEndpoint(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	c := &client{t: t, router: newTestRouter(newTestService(repo, goldPhase()))}

	rec := c.json(http.MethodGet, "/api/v1/rewards", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	phases := data["phases"].([]any)
	require.Len(t, phases, 1)
	progress := data["progress"].(map[string]any)
	require.Equal(t, "phase-gold", progress["next_phase_id"])
	require.Equal(t, "500.00", progress["remaining_to_next_display"])
}

func TestUpdateContactEndpoint(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	c := &client{t: t, router: newTestRouter(newTestService(repo))}

	rec := c.json(http.MethodPatch, "/api/v1/cart/contact",
		`{"name":"Layla Hassan","email":"layla@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	summary := body["data"].(map[string]any)["cart_summary"].(map[string]any)
	contact := summary["contact"].(map[string]any)
	require.Equal(t, "Layla Hassan", contact["name"])
}
