package cart

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/niledreams/backend-travel/internal/common"
	"github.com/niledreams/backend-travel/internal/config"
	"github.com/niledreams/backend-travel/internal/rewards"
	"github.com/niledreams/backend-travel/internal/store"
)

type memRepo struct {
	nextID  int
	carts   map[string]store.Cart
	tokens  map[string]string
	entries map[string]store.CartEntry
	order   []string
	trips   map[string]store.Trip
	options map[string]store.TripOption
	extras  map[string][]store.TripExtra
}

func newMemRepo() *memRepo {
	return &memRepo{
		carts:   map[string]store.Cart{},
		tokens:  map[string]string{},
		entries: map[string]store.CartEntry{},
		trips:   map[string]store.Trip{},
		options: map[string]store.TripOption{},
		extras:  map[string][]store.TripExtra{},
	}
}

func (r *memRepo) id(prefix string) string {
	r.nextID++
	return fmt.Sprintf("%s-%d", prefix, r.nextID)
}

func (r *memRepo) GetCartByToken(_ context.Context, token string) (store.Cart, error) {
	id, ok := r.tokens[token]
	if !ok {
		return store.Cart{}, store.ErrNotFound
	}
	return r.carts[id], nil
}

func (r *memRepo) CreateCart(_ context.Context, token string) (store.Cart, error) {
	cart := store.Cart{ID: r.id("cart"), Token: token, CreatedAt: time.Now()}
	r.carts[cart.ID] = cart
	r.tokens[token] = cart.ID
	return cart, nil
}

func (r *memRepo) GetCart(_ context.Context, id string) (store.Cart, error) {
	cart, ok := r.carts[id]
	if !ok {
		return store.Cart{}, store.ErrNotFound
	}
	return cart, nil
}

func (r *memRepo) UpdateCartContact(_ context.Context, cartID string, name, email, phone *string) (store.Cart, error) {
	cart, ok := r.carts[cartID]
	if !ok {
		return store.Cart{}, store.ErrNotFound
	}
	cart.ContactName = name
	cart.ContactEmail = email
	cart.ContactPhone = phone
	r.carts[cartID] = cart
	return cart, nil
}

func (r *memRepo) ListEntries(_ context.Context, cartID string) ([]store.CartEntry, error) {
	var out []store.CartEntry
	for _, id := range r.order {
		entry, ok := r.entries[id]
		if ok && entry.CartID == cartID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *memRepo) GetTripBySlug(_ context.Context, slug string) (store.Trip, error) {
	for _, trip := range r.trips {
		if trip.Slug == slug {
			return trip, nil
		}
	}
	return store.Trip{}, store.ErrNotFound
}

func (r *memRepo) GetTripOption(_ context.Context, tripID, optionID string) (store.TripOption, error) {
	opt, ok := r.options[optionID]
	if !ok || opt.TripID != tripID {
		return store.TripOption{}, store.ErrNotFound
	}
	return opt, nil
}

func (r *memRepo) ListTripExtrasByIDs(_ context.Context, tripID string, ids []string) ([]store.TripExtra, error) {
	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	var out []store.TripExtra
	for _, extra := range r.extras[tripID] {
		if wanted[extra.ID] {
			out = append(out, extra)
		}
	}
	return out, nil
}

func (r *memRepo) ListTripExtras(_ context.Context, tripID string) ([]store.TripExtra, error) {
	return r.extras[tripID], nil
}

func (r *memRepo) ListTripsByIDs(_ context.Context, ids []string) ([]store.Trip, error) {
	var out []store.Trip
	for _, id := range ids {
		if trip, ok := r.trips[id]; ok {
			out = append(out, trip)
		}
	}
	return out, nil
}

func (r *memRepo) Mutate(_ context.Context, cartID string, fn func(EntryTx) error) error {
	return fn(memTx{repo: r, cartID: cartID})
}

type memTx struct {
	repo   *memRepo
	cartID string
}

func (t memTx) ListEntries(ctx context.Context) ([]store.CartEntry, error) {
	return t.repo.ListEntries(ctx, t.cartID)
}

func (t memTx) GetEntry(_ context.Context, entryID string) (store.CartEntry, error) {
	entry, ok := t.repo.entries[entryID]
	if !ok || entry.CartID != t.cartID {
		return store.CartEntry{}, store.ErrNotFound
	}
	return entry, nil
}

func (t memTx) InsertEntry(_ context.Context, e store.CartEntry) (store.CartEntry, error) {
	e.ID = t.repo.id("entry")
	e.CartID = t.cartID
	e.CreatedAt = time.Now()
	t.repo.entries[e.ID] = e
	t.repo.order = append(t.repo.order, e.ID)
	return e, nil
}

func (t memTx) UpdateEntry(_ context.Context, e store.CartEntry) (store.CartEntry, error) {
	existing, ok := t.repo.entries[e.ID]
	if !ok || existing.CartID != t.cartID {
		return store.CartEntry{}, store.ErrNotFound
	}
	e.CartID = t.cartID
	t.repo.entries[e.ID] = e
	return e, nil
}

func (t memTx) DeleteEntry(_ context.Context, entryID string) error {
	entry, ok := t.repo.entries[entryID]
	if !ok || entry.CartID != t.cartID {
		return store.ErrNotFound
	}
	delete(t.repo.entries, entryID)
	return nil
}

func (t memTx) SetAppliedPhase(_ context.Context, entryID string, phaseID *string) error {
	entry, ok := t.repo.entries[entryID]
	if !ok || entry.CartID != t.cartID {
		return store.ErrNotFound
	}
	entry.AppliedPhaseID = phaseID
	t.repo.entries[entryID] = entry
	return nil
}

func (t memTx) ClearAppliedPhases(_ context.Context) (int64, error) {
	var n int64
	for id, entry := range t.repo.entries {
		if entry.CartID == t.cartID && entry.AppliedPhaseID != nil {
			entry.AppliedPhaseID = nil
			t.repo.entries[id] = entry
			n++
		}
	}
	return n, nil
}

type stubPhases struct {
	phases []rewards.Phase
}

func (s stubPhases) Phases(context.Context) ([]rewards.Phase, error) {
	return s.phases, nil
}

func fixedNow() time.Time {
	return time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
}

func seedNileTrips(repo *memRepo) {
	childPrice := int64(45000)
	optionPrice := int64(150000)
	repo.trips["trip-nile"] = store.Trip{
		ID:                 "trip-nile",
		Slug:               "nile-cruise",
		Title:              "Nile Cruise",
		BasePriceCents:     100000,
		ChildPriceCents:    &childPrice,
		Active:             true,
		RecommendedTripIDs: []string{"trip-pyramids"},
	}
	repo.trips["trip-pyramids"] = store.Trip{
		ID:               "trip-pyramids",
		Slug:             "pyramids-day-tour",
		Title:            "Pyramids Day Tour",
		BasePriceCents:   30000,
		Active:           true,
		QuickAddEligible: true,
	}
	repo.options["opt-deluxe"] = store.TripOption{
		ID:         "opt-deluxe",
		TripID:     "trip-nile",
		Label:      "Deluxe Cabin",
		PriceCents: &optionPrice,
	}
	repo.extras["trip-nile"] = []store.TripExtra{
		{ID: "extra-photo", TripID: "trip-nile", Name: "Photo Package", PriceCents: 5000},
	}
	repo.extras["trip-pyramids"] = []store.TripExtra{
		{ID: "extra-lunch", TripID: "trip-pyramids", Name: "Lunch", PriceCents: 2500},
	}
}

func goldPhase() rewards.Phase {
	return rewards.Phase{
		ID:              "phase-gold",
		Name:            "Gold",
		ThresholdCents:  50000,
		DiscountPercent: 10,
		Currency:        "USD",
		Trips: []rewards.PhaseTrip{
			{TripID: "trip-nile", Slug: "nile-cruise", Title: "Nile Cruise", BasePriceCents: 100000, ChildPriceCents: 45000},
		},
	}
}

func newTestService(repo *memRepo, phases ...rewards.Phase) *Service {
	return &Service{
		Repo:        repo,
		Rewards:     stubPhases{phases: phases},
		Validate:    validator.New(),
		Policy:      config.RedemptionSingle,
		Currency:    "USD",
		MaxAdults:   16,
		MaxChildren: 16,
		MaxInfants:  8,
		Now:         fixedNow,
	}
}

func mustCart(t *testing.T, svc *Service) store.Cart {
	t.Helper()
	cart, created, err := svc.EnsureCart(context.Background(), "")
	require.NoError(t, err)
	require.True(t, created)
	return cart
}

func TestEnsureCartReusesToken(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)

	first, created, err := svc.EnsureCart(context.Background(), "")
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.EnsureCart(context.Background(), first.Token)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)
}

func TestAddEntryBasicPricing(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	svc := newTestService(repo)
	cart := mustCart(t, svc)

	summary, err := svc.AddEntry(context.Background(), cart, AddEntryInput{
		TripSlug:   "nile-cruise",
		TravelDate: "2026-04-01",
		Adults:     2,
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Count)
	require.Equal(t, int64(200000), summary.PreDiscountTotalCents)
	require.Equal(t, int64(0), summary.DiscountTotalCents)
	require.Equal(t, int64(200000), summary.TotalCents)
	require.Equal(t, "2,000.00", summary.TotalDisplay)
	require.Equal(t, "0.00", summary.DiscountTotalDisplay)

	entry := summary.Entries[0]
	require.Equal(t, "trip-nile", entry.TripID)
	require.Equal(t, "2 travelers", entry.TravelerLabel)
	require.Equal(t, entry.GrandTotalDisplay, entry.OriginalGrandTotalDisplay)
}

func TestAddEntryRejectsPastDate(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	svc := newTestService(repo)
	cart := mustCart(t, svc)

	_, err := svc.AddEntry(context.Background(), cart, AddEntryInput{
		TripSlug:   "nile-cruise",
		TravelDate: "2026-03-09",
		Adults:     2,
	})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VALIDATION", appErr.Code)
}

func TestAddEntryClampsTravelerCounts(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	svc := newTestService(repo)
	svc.MaxAdults = 4
	cart := mustCart(t, svc)

	summary, err := svc.AddEntry(context.Background(), cart, AddEntryInput{
		TripSlug:   "nile-cruise",
		TravelDate: "2026-04-01",
		Adults:     99,
		Children:   -3,
		Infants:    2,
	})
	require.NoError(t, err)
	entry := summary.Entries[0]
	require.Equal(t, 4, entry.AdultCount)
	require.Equal(t, 0, entry.ChildCount)
	require.Equal(t, 2, entry.InfantCount)
	require.Equal(t, "4 travelers + 2 infants", entry.TravelerLabel)
	// Infants never bill.
	require.Equal(t, int64(400000), entry.PreDiscountTotalCents)
}

func TestChildPriceFallsBackToAdult(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	svc := newTestService(repo)
	cart := mustCart(t, svc)

	summary, err := svc.AddEntry(context.Background(), cart, AddEntryInput{
		TripSlug:   "pyramids-day-tour",
		TravelDate: "2026-04-01",
		Adults:     1,
		Children:   1,
	})
	require.NoError(t, err)
	entry := summary.Entries[0]
	require.False(t, entry.HasChildPrice)
	require.Equal(t, int64(60000), entry.PreDiscountTotalCents)
}

func TestAddEntryWithOptionAndExtras(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	svc := newTestService(repo)
	cart := mustCart(t, svc)

	summary, err := svc.AddEntry(context.Background(), cart, AddEntryInput{
		TripSlug:   "nile-cruise",
		TravelDate: "2026-04-01",
		Adults:     2,
		OptionID:   "opt-deluxe",
		ExtraIDs:   []string{"extra-photo"},
	})
	require.NoError(t, err)
	entry := summary.Entries[0]
	require.NotNil(t, entry.Option)
	require.Equal(t, "Deluxe Cabin", entry.Option.Label)
	require.Len(t, entry.Extras, 1)
	// 2 adults at the option price plus the photo package.
	require.Equal(t, int64(2*150000+5000), entry.PreDiscountTotalCents)
}

func TestApplyRewardDiscountsEntry(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	svc := newTestService(repo, goldPhase())
	cart := mustCart(t, svc)

	summary, err := svc.AddEntry(context.Background(), cart, AddEntryInput{
		TripSlug:   "nile-cruise",
		TravelDate: "2026-04-01",
		Adults:     6,
	})
	require.NoError(t, err)
	require.Contains(t, summary.Rewards.Progress.UnlockedPhaseIDs, "phase-gold")
	entryID := summary.Entries[0].ID

	applied, err := svc.ApplyReward(context.Background(), cart, ApplyRewardInput{
		EntryID: entryID,
		PhaseID: "phase-gold",
		TripID:  "trip-nile",
	})
	require.NoError(t, err)
	require.Equal(t, int64(60000), applied.DiscountTotalCents)
	require.Equal(t, int64(540000), applied.TotalCents)
	require.Equal(t, "5,400.00", applied.TotalDisplay)

	entry := applied.Entries[0]
	require.NotNil(t, entry.AppliedReward)
	require.Equal(t, "Gold", entry.AppliedReward.PhaseName)
	require.Equal(t, "600.00", entry.AppliedReward.DiscountDisplay)
	require.Equal(t, int64(540000), entry.GrandTotalCents)
	require.Equal(t, int64(600000), entry.OriginalGrandTotalCents)

	phase := applied.Rewards.Phases[0]
	require.True(t, phase.Unlocked)
	require.Equal(t, []string{entryID}, phase.AppliedEntryIDs)
}

func TestApplyRewardLockedPhaseRejected(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	phase := goldPhase()
	phase.ThresholdCents = 1000000
	svc := newTestService(repo, phase)
	cart := mustCart(t, svc)

	summary, err := svc.AddEntry(context.Background(), cart, AddEntryInput{
		TripSlug:   "nile-cruise",
		TravelDate: "2026-04-01",
		Adults:     2,
	})
	require.NoError(t, err)

	_, err = svc.ApplyReward(context.Background(), cart, ApplyRewardInput{
		EntryID: summary.Entries[0].ID,
		PhaseID: phase.ID,
	})
	require.ErrorIs(t, err, rewards.ErrPhaseLocked)

	unchanged, err := svc.Summarize(context.Background(), cart)
	require.NoError(t, err)
	require.Equal(t, int64(0), unchanged.DiscountTotalCents)
}

func TestApplyRewardIneligibleTripRejected(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	svc := newTestService(repo, goldPhase())
	cart := mustCart(t, svc)

	summary, err := svc.AddEntry(context.Background(), cart, AddEntryInput{
		TripSlug:   "pyramids-day-tour",
		TravelDate: "2026-04-01",
		Adults:     2,
	})
	require.NoError(t, err)
	// Bring the total over the threshold with an eligible trip.
	summary, err = svc.AddEntry(context.Background(), cart, AddEntryInput{
		TripSlug:   "nile-cruise",
		TravelDate: "2026-04-02",
		Adults:     2,
	})
	require.NoError(t, err)

	pyramidsEntry := summary.Entries[0]
	require.Equal(t, "trip-pyramids", pyramidsEntry.TripID)
	_, err = svc.ApplyReward(context.Background(), cart, ApplyRewardInput{
		EntryID: pyramidsEntry.ID,
		PhaseID: "phase-gold",
	})
	require.ErrorIs(t, err, rewards.ErrTripNotEligible)

	unchanged, err := svc.Summarize(context.Background(), cart)
	require.NoError(t, err)
	require.Equal(t, int64(0), unchanged.DiscountTotalCents)
}

func TestApplyRewardUnknownPhase(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	svc := newTestService(repo, goldPhase())
	cart := mustCart(t, svc)

	summary, err := svc.AddEntry(context.Background(), cart, AddEntryInput{
		TripSlug:   "nile-cruise",
		TravelDate: "2026-04-01",
		Adults:     2,
	})
	require.NoError(t, err)

	_, err = svc.ApplyReward(context.Background(), cart, ApplyRewardInput{
		EntryID: summary.Entries[0].ID,
		PhaseID: "phase-missing",
	})
	require.ErrorIs(t, err, rewards.ErrPhaseNotFound)
}

func TestSingleRedemptionReplacesOtherEntries(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	phase := goldPhase()
	phase.Trips = append(phase.Trips, rewards.PhaseTrip{
		TripID: "trip-pyramids", Slug: "pyramids-day-tour", Title: "Pyramids Day Tour", BasePriceCents: 30000, ChildPriceCents: 30000,
	})
	svc := newTestService(repo, phase)
	cart := mustCart(t, svc)

	_, err := svc.AddEntry(context.Background(), cart, AddEntryInput{
		TripSlug: "nile-cruise", TravelDate: "2026-04-01", Adults: 4,
	})
	require.NoError(t, err)
	summary, err := svc.AddEntry(context.Background(), cart, AddEntryInput{
		TripSlug: "pyramids-day-tour", TravelDate: "2026-04-02", Adults: 2,
	})
	require.NoError(t, err)

	nileID := summary.Entries[0].ID
	pyramidsID := summary.Entries[1].ID

	_, err = svc.ApplyReward(context.Background(), cart, ApplyRewardInput{EntryID: nileID, PhaseID: phase.ID})
	require.NoError(t, err)
	replaced, err := svc.ApplyReward(context.Background(), cart, ApplyRewardInput{EntryID: pyramidsID, PhaseID: phase.ID})
	require.NoError(t, err)

	require.Nil(t, replaced.Entries[0].AppliedReward)
	require.NotNil(t, replaced.Entries[1].AppliedReward)
	require.Equal(t, []string{pyramidsID}, replaced.Rewards.Phases[0].AppliedEntryIDs)
}

func TestPerEntryPolicyKeepsBothRedemptions(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	phase := goldPhase()
	phase.Trips = append(phase.Trips, rewards.PhaseTrip{
		TripID: "trip-pyramids", Slug: "pyramids-day-tour", Title: "Pyramids Day Tour", BasePriceCents: 30000, ChildPriceCents: 30000,
	})
	svc := newTestService(repo, phase)
	svc.Policy = config.RedemptionPerEntry
	cart := mustCart(t, svc)

	_, err := svc.AddEntry(context.Background(), cart, AddEntryInput{
		TripSlug: "nile-cruise", TravelDate: "2026-04-01", Adults: 4,
	})
	require.NoError(t, err)
	summary, err := svc.AddEntry(context.Background(), cart, AddEntryInput{
		TripSlug: "pyramids-day-tour", TravelDate: "2026-04-02", Adults: 2,
	})
	require.NoError(t, err)

	_, err = svc.ApplyReward(context.Background(), cart, ApplyRewardInput{EntryID: summary.Entries[0].ID, PhaseID: phase.ID})
	require.NoError(t, err)
	both, err := svc.ApplyReward(context.Background(), cart, ApplyRewardInput{EntryID: summary.Entries[1].ID, PhaseID: phase.ID})
	require.NoError(t, err)

	require.NotNil(t, both.Entries[0].AppliedReward)
	require.NotNil(t, both.Entries[1].AppliedReward)
	require.Len(t, both.Rewards.Phases[0].AppliedEntryIDs, 2)
}

func TestRemoveEntryCascadesRelock(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	phase := goldPhase()
	phase.ThresholdCents = 150000
	svc := newTestService(repo, phase)
	cart := mustCart(t, svc)

	// Two entries that only cross the threshold together.
	_, err := svc.AddEntry(context.Background(), cart, AddEntryInput{
		TripSlug: "nile-cruise", TravelDate: "2026-04-01", Adults: 1,
	})
	require.NoError(t, err)
	summary, err := svc.AddEntry(context.Background(), cart, AddEntryInput{
		TripSlug: "pyramids-day-tour", TravelDate: "2026-04-02", Adults: 2,
	})
	require.NoError(t, err)
	require.Contains(t, summary.Rewards.Progress.UnlockedPhaseIDs, phase.ID)

	nileID := summary.Entries[0].ID
	pyramidsID := summary.Entries[1].ID
	_, err = svc.ApplyReward(context.Background(), cart, ApplyRewardInput{EntryID: nileID, PhaseID: phase.ID})
	require.NoError(t, err)

	after, err := svc.RemoveEntry(context.Background(), cart, pyramidsID)
	require.NoError(t, err)
	require.NotContains(t, after.Rewards.Progress.UnlockedPhaseIDs, phase.ID)
	require.Nil(t, after.Entries[0].AppliedReward)
	require.Equal(t, int64(0), after.DiscountTotalCents)
	require.False(t, after.Rewards.Phases[0].Unlocked)
}

func TestUpdateEntryDropsRewardSoftly(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	phase := goldPhase()
	phase.ThresholdCents = 150000
	svc := newTestService(repo, phase)
	cart := mustCart(t, svc)

	summary, err := svc.AddEntry(context.Background(), cart, AddEntryInput{
		TripSlug: "nile-cruise", TravelDate: "2026-04-01", Adults: 2,
	})
	require.NoError(t, err)
	entryID := summary.Entries[0].ID
	_, err = svc.ApplyReward(context.Background(), cart, ApplyRewardInput{EntryID: entryID, PhaseID: phase.ID})
	require.NoError(t, err)

	adults := 1
	after, err := svc.UpdateEntry(context.Background(), cart, entryID, UpdateEntryInput{Adults: &adults})
	require.NoError(t, err)
	require.Nil(t, after.Entries[0].AppliedReward)
	require.Equal(t, int64(100000), after.TotalCents)
}

func TestRemoveRewardIsNoopWithoutReward(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	svc := newTestService(repo, goldPhase())
	cart := mustCart(t, svc)

	summary, err := svc.AddEntry(context.Background(), cart, AddEntryInput{
		TripSlug: "nile-cruise", TravelDate: "2026-04-01", Adults: 2,
	})
	require.NoError(t, err)

	after, err := svc.RemoveReward(context.Background(), cart, summary.Entries[0].ID)
	require.NoError(t, err)
	require.Nil(t, after.Entries[0].AppliedReward)
}

func TestQuickAddDefaultsAndClampsDate(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	svc := newTestService(repo)
	cart := mustCart(t, svc)

	result, err := svc.QuickAdd(context.Background(), cart, "pyramids-day-tour", QuickAddInput{Date: "2020-01-01"})
	require.NoError(t, err)
	require.True(t, result.InCart)
	require.Equal(t, "trip-pyramids", result.TripID)
	require.Equal(t, "Pyramids Day Tour added to your booking list.", result.ToastMessage)

	entry := result.Summary.Entries[0]
	require.Equal(t, "2026-03-10", entry.TravelDate)
	require.Equal(t, 1, entry.AdultCount)
	require.Len(t, result.Services, 1)
	require.Equal(t, "Lunch", result.Services[0].Name)
}

func TestQuickAddAlreadyInCart(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	svc := newTestService(repo)
	cart := mustCart(t, svc)

	_, err := svc.QuickAdd(context.Background(), cart, "pyramids-day-tour", QuickAddInput{})
	require.NoError(t, err)
	again, err := svc.QuickAdd(context.Background(), cart, "pyramids-day-tour", QuickAddInput{Adults: 3})
	require.NoError(t, err)
	require.True(t, again.InCart)
	require.Equal(t, 1, again.Summary.Count)
	require.Equal(t, "Pyramids Day Tour is already in your booking list.", again.ToastMessage)
}

func TestQuickAddRecommendsRelatedTripsNotInCart(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	svc := newTestService(repo)
	cart := mustCart(t, svc)

	result, err := svc.QuickAdd(context.Background(), cart, "nile-cruise", QuickAddInput{})
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 1)
	require.Equal(t, "pyramids-day-tour", result.Recommendations[0].Slug)

	// Once the recommended trip is booked it drops out of the suggestions.
	_, err = svc.QuickAdd(context.Background(), cart, "pyramids-day-tour", QuickAddInput{})
	require.NoError(t, err)
	again, err := svc.QuickAdd(context.Background(), cart, "nile-cruise", QuickAddInput{})
	require.NoError(t, err)
	require.Empty(t, again.Recommendations)
}

func TestUpdateContactValidatesEmail(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	svc := newTestService(repo)
	cart := mustCart(t, svc)

	_, err := svc.UpdateContact(context.Background(), cart, ContactInput{Email: "not-an-email"})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VALIDATION", appErr.Code)

	summary, err := svc.UpdateContact(context.Background(), cart, ContactInput{
		Name:  "Layla Hassan",
		Email: "layla@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, summary.Contact)
	require.Equal(t, "Layla Hassan", summary.Contact.Name)
}

func TestMonotonicUnlock(t *testing.T) {
	phases := []rewards.Phase{goldPhase()}
	phases = append(phases, rewards.Phase{ID: "phase-platinum", Name: "Platinum", ThresholdCents: 200000, DiscountPercent: 15})

	prev := 0
	for _, total := range []int64{0, 49999, 50000, 199999, 200000, 1000000} {
		unlocked := rewards.UnlockedPhases(phases, total)
		require.GreaterOrEqual(t, len(unlocked), prev, "unlock set must grow with the total")
		prev = len(unlocked)
	}
}

func TestSummaryTotalConsistency(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	svc := newTestService(repo, goldPhase())
	cart := mustCart(t, svc)

	summary, err := svc.AddEntry(context.Background(), cart, AddEntryInput{
		TripSlug: "nile-cruise", TravelDate: "2026-04-01", Adults: 3, Children: 1,
		ExtraIDs: []string{"extra-photo"},
	})
	require.NoError(t, err)
	_, err = svc.ApplyReward(context.Background(), cart, ApplyRewardInput{EntryID: summary.Entries[0].ID, PhaseID: "phase-gold"})
	require.NoError(t, err)

	final, err := svc.Summarize(context.Background(), cart)
	require.NoError(t, err)
	require.Equal(t, final.PreDiscountTotalCents-final.DiscountTotalCents, final.TotalCents)

	var entrySum int64
	for _, entry := range final.Entries {
		entrySum += entry.DiscountTotalCents
		require.GreaterOrEqual(t, entry.DiscountTotalCents, int64(0))
		require.LessOrEqual(t, entry.DiscountTotalCents, entry.PreDiscountTotalCents)
	}
	require.Equal(t, final.DiscountTotalCents, entrySum)
}

func TestEntryNotFoundMapsToAppError(t *testing.T) {
	repo := newMemRepo()
	seedNileTrips(repo)
	svc := newTestService(repo, goldPhase())
	cart := mustCart(t, svc)

	_, err := svc.RemoveEntry(context.Background(), cart, "missing")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 404, appErr.HTTPStatus)
	require.True(t, errors.Is(appErr.Err, store.ErrNotFound))
}
