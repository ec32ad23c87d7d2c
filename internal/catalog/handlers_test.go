package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/niledreams/backend-travel/internal/store"
)

type fakeQueries struct {
	trips   []store.Trip
	options []store.TripOption
	extras  []store.TripExtra
	stats   store.ReviewStats
}

func (f *fakeQueries) ListTrips(_ context.Context, filter store.TripFilter) ([]store.Trip, error) {
	if filter.Destination == "" {
		return f.trips, nil
	}
	var out []store.Trip
	for _, t := range f.trips {
		if t.Destination == filter.Destination {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeQueries) GetTripBySlug(_ context.Context, slug string) (store.Trip, error) {
	for _, t := range f.trips {
		if t.Slug == slug {
			return t, nil
		}
	}
	return store.Trip{}, store.ErrNotFound
}

func (f *fakeQueries) ListTripsByIDs(_ context.Context, ids []string) ([]store.Trip, error) {
	var out []store.Trip
	for _, t := range f.trips {
		for _, id := range ids {
			if t.ID == id {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *fakeQueries) ListDestinations(context.Context) ([]string, error) {
	return []string{"Aswan", "Cairo"}, nil
}

func (f *fakeQueries) ListTripOptions(context.Context, string) ([]store.TripOption, error) {
	return f.options, nil
}

func (f *fakeQueries) ListTripExtras(context.Context, string) ([]store.TripExtra, error) {
	return f.extras, nil
}

func (f *fakeQueries) GetReviewStats(context.Context, string) (store.ReviewStats, error) {
	return f.stats, nil
}

func testRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/v1/trips", h.Trips)
	r.Get("/api/v1/trips/{slug}", h.TripDetail)
	r.Get("/api/v1/destinations", h.Destinations)
	return r
}

func fixtureTrips() []store.Trip {
	child := int64(45000)
	return []store.Trip{
		{
			ID:                 "11111111-1111-1111-1111-111111111111",
			Slug:               "nile-cruise",
			Title:              "Nile Cruise",
			Destination:        "Aswan",
			DurationDays:       4,
			BasePriceCents:     129900,
			ChildPriceCents:    &child,
			Active:             true,
			QuickAddEligible:   true,
			RecommendedTripIDs: []string{"22222222-2222-2222-2222-222222222222"},
		},
		{
			ID:             "22222222-2222-2222-2222-222222222222",
			Slug:           "pyramids-day-tour",
			Title:          "Pyramids Day Tour",
			Destination:    "Cairo",
			DurationDays:   1,
			BasePriceCents: 8500,
			Active:         true,
		},
	}
}

func TestTripsListing(t *testing.T) {
	h := &Handler{Service: &Service{Queries: &fakeQueries{trips: fixtureTrips()}}}
	router := testRouter(h)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/trips", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data []TripCard `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	require.Equal(t, "1,299.00", body.Data[0].PriceDisplay)
}

func TestTripsListingFilterByDestination(t *testing.T) {
	h := &Handler{Service: &Service{Queries: &fakeQueries{trips: fixtureTrips()}}}
	router := testRouter(h)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/trips?destination=Cairo", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data []TripCard `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, "pyramids-day-tour", body.Data[0].Slug)
}

func TestTripsListingRejectsBadLimit(t *testing.T) {
	h := &Handler{Service: &Service{Queries: &fakeQueries{trips: fixtureTrips()}}}
	router := testRouter(h)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/trips?limit=1000", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTripDetail(t *testing.T) {
	price := int64(15000)
	queries := &fakeQueries{
		trips: fixtureTrips(),
		options: []store.TripOption{
			{ID: "opt-1", Label: "Deluxe cabin", PriceCents: &price, Active: true},
		},
		extras: []store.TripExtra{
			{ID: "ex-1", Name: "Airport transfer", PriceCents: 2500, Active: true},
		},
		stats: store.ReviewStats{Count: 3, Average: 4.7},
	}
	h := &Handler{Service: &Service{Queries: queries, WhatsAppNumber: "+20 100 000 0000"}}
	router := testRouter(h)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/trips/nile-cruise", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data TripDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "Nile Cruise", body.Data.Title)
	require.Len(t, body.Data.Options, 1)
	require.Equal(t, "150.00", body.Data.Options[0].PriceDisplay)
	require.Len(t, body.Data.Extras, 1)
	require.Equal(t, 3, body.Data.Reviews.Count)
	require.Len(t, body.Data.Related, 1)
	require.Contains(t, body.Data.BookingHelpURL, "wa.me/201000000000")
}

func TestTripDetailNotFound(t *testing.T) {
	h := &Handler{Service: &Service{Queries: &fakeQueries{trips: fixtureTrips()}}}
	router := testRouter(h)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/trips/unknown", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDestinations(t *testing.T) {
	h := &Handler{Service: &Service{Queries: &fakeQueries{}}}
	router := testRouter(h)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/destinations", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, []string{"Aswan", "Cairo"}, body.Data)
}
