package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCSRFMiddlewareBlocksMissingToken(t *testing.T) {
	csrf := CSRF{Header: "X-CSRF-Token", Cookie: "csrf_token"}
	handler := csrf.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/cart/reward/apply", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json error body, got content type %q", ct)
	}
}

func TestCSRFMiddlewareAllowsValidToken(t *testing.T) {
	csrf := CSRF{Header: "X-CSRF-Token", Cookie: "csrf_token"}
	handler := csrf.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/cart/reward/apply", nil)
	token := "secure-token"
	req.Header.Set("X-CSRF-Token", token)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: token})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestCSRFMiddlewareRejectsMismatch(t *testing.T) {
	csrf := CSRF{Header: "X-CSRF-Token", Cookie: "csrf_token"}
	handler := csrf.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/cart/reward/apply", nil)
	req.Header.Set("X-CSRF-Token", "aaaaaaaa")
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "bbbbbbbb"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for mismatched token, got %d", rr.Code)
	}
}

func TestCSRFMiddlewareSkipsBearer(t *testing.T) {
	csrf := CSRF{Header: "X-CSRF-Token"}
	handler := csrf.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodPost, "/admin/seo", nil)
	req.Header.Set("Authorization", "Bearer abc.def")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202 for bearer request, got %d", rr.Code)
	}
}

func TestCSRFEnsureCookieIssuesToken(t *testing.T) {
	csrf := CSRF{Cookie: "csrf_token"}
	handler := csrf.EnsureCookie(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	issued := false
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == "csrf_token" && cookie.Value != "" {
			issued = true
		}
	}
	if !issued {
		t.Fatal("expected csrf cookie to be issued")
	}
}
