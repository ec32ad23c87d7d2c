package seo

import "net/http"

// RedirectMiddleware issues configured redirects before routing. Missing
// entries and lookup errors fall through to the next handler so the
// middleware never blocks traffic.
func (s *Service) RedirectMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s == nil || s.Queries == nil || r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		entry, err := s.Queries.GetSEOEntryByPath(r.Context(), normalizePath(r.URL.Path))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		if entry.RedirectTo != nil && *entry.RedirectTo != "" {
			status := entry.StatusCode
			if status != http.StatusMovedPermanently && status != http.StatusFound {
				status = http.StatusMovedPermanently
			}
			http.Redirect(w, r, *entry.RedirectTo, status)
			return
		}
		next.ServeHTTP(w, r)
	})
}
