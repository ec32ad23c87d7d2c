package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
)

// CSRF protects cookie-based flows using the double-submit technique. The
// token cookie is readable by the frontend, which echoes it back in the
// configured header on every mutation.
type CSRF struct {
	Header string
	Cookie string
	Secure bool
}

func (c CSRF) headerName() string {
	if name := strings.TrimSpace(c.Header); name != "" {
		return name
	}
	return "X-CSRF-Token"
}

func (c CSRF) cookieName() string {
	if name := strings.TrimSpace(c.Cookie); name != "" {
		return name
	}
	return "csrf_token"
}

// EnsureCookie issues the CSRF token cookie when the request does not carry one.
func (c CSRF) EnsureCookie(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(c.cookieName()); err != nil || strings.TrimSpace(cookie.Value) == "" {
			buf := make([]byte, 32)
			if _, err := rand.Read(buf); err == nil {
				http.SetCookie(w, &http.Cookie{
					Name:     c.cookieName(),
					Value:    hex.EncodeToString(buf),
					Path:     "/",
					Secure:   c.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Middleware enforces that non-idempotent requests include a CSRF token header matching the cookie.
func (c CSRF) Middleware(next http.Handler) http.Handler {
	headerName := c.headerName()
	cookieName := c.cookieName()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			next.ServeHTTP(w, r)
			return
		}

		auth := strings.TrimSpace(r.Header.Get("Authorization"))
		if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimSpace(r.Header.Get(headerName))
		if token == "" {
			forbiddenJSON(w, "missing csrf token")
			return
		}

		cookie, err := r.Cookie(cookieName)
		if err != nil || strings.TrimSpace(cookie.Value) == "" {
			forbiddenJSON(w, "missing csrf cookie")
			return
		}

		if subtleConstantTimeCompare(token, cookie.Value) != 1 {
			forbiddenJSON(w, "invalid csrf token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func forbiddenJSON(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}

func subtleConstantTimeCompare(a, b string) int {
	if len(a) != len(b) {
		return 0
	}
	if len(a) == 0 {
		return 1
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b))
}
