package seo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/niledreams/backend-travel/internal/store"
)

type fakeSEOStore struct {
	entries map[string]store.SEOEntry
}

func newFakeSEOStore() *fakeSEOStore {
	return &fakeSEOStore{entries: map[string]store.SEOEntry{}}
}

func (f *fakeSEOStore) GetSEOEntryByPath(_ context.Context, path string) (store.SEOEntry, error) {
	entry, ok := f.entries[path]
	if !ok {
		return store.SEOEntry{}, store.ErrNotFound
	}
	return entry, nil
}

func (f *fakeSEOStore) ListSEOEntries(context.Context, int, int) ([]store.SEOEntry, error) {
	var out []store.SEOEntry
	for _, e := range f.entries {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeSEOStore) UpsertSEOEntry(_ context.Context, e store.SEOEntry) (store.SEOEntry, error) {
	if e.ID == "" {
		e.ID = "seo-" + e.Path
	}
	f.entries[e.Path] = e
	return e, nil
}

func (f *fakeSEOStore) DeleteSEOEntry(_ context.Context, id string) error {
	for path, e := range f.entries {
		if e.ID == id {
			delete(f.entries, path)
			return nil
		}
	}
	return store.ErrNotFound
}

func TestUpsertAndResolve(t *testing.T) {
	svc := &Service{Queries: newFakeSEOStore()}

	_, err := svc.Upsert(context.Background(), EntryInput{
		Path:        "egypt-tours/",
		Title:       "Egypt Tours",
		Description: "Handpicked Egypt itineraries",
	})
	require.NoError(t, err)

	res, err := svc.Resolve(context.Background(), "/egypt-tours")
	require.NoError(t, err)
	require.Equal(t, "Egypt Tours", res.Title)
	require.Nil(t, res.RedirectTo)
}

func TestUpsertRedirectDefaultsToPermanent(t *testing.T) {
	svc := &Service{Queries: newFakeSEOStore()}
	target := "/trips/nile-cruise"

	entry, err := svc.Upsert(context.Background(), EntryInput{Path: "/old-cruise", RedirectTo: &target})
	require.NoError(t, err)
	require.Equal(t, http.StatusMovedPermanently, entry.StatusCode)
}

func TestUpsertRejectsSelfRedirect(t *testing.T) {
	svc := &Service{Queries: newFakeSEOStore()}
	target := "/loop"
	_, err := svc.Upsert(context.Background(), EntryInput{Path: "/loop", RedirectTo: &target})
	require.Error(t, err)
}

func TestRedirectMiddleware(t *testing.T) {
	svc := &Service{Queries: newFakeSEOStore()}
	target := "/trips/nile-cruise"
	_, err := svc.Upsert(context.Background(), EntryInput{Path: "/old-cruise", RedirectTo: &target})
	require.NoError(t, err)

	handler := svc.RedirectMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/old-cruise", nil))
	require.Equal(t, http.StatusMovedPermanently, rr.Code)
	require.Equal(t, target, rr.Header().Get("Location"))

	rr2 := httptest.NewRecorder()
	handler.ServeHTTP(rr2, httptest.NewRequest(http.MethodGet, "/untouched", nil))
	require.Equal(t, http.StatusOK, rr2.Code)
}

func TestResolveNotFound(t *testing.T) {
	svc := &Service{Queries: newFakeSEOStore()}
	_, err := svc.Resolve(context.Background(), "/missing")
	require.Error(t, err)
}
