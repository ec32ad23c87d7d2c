package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/niledreams/backend-travel/internal/common"
	"github.com/niledreams/backend-travel/internal/config"
	"github.com/niledreams/backend-travel/internal/events"
	"github.com/niledreams/backend-travel/internal/lock"
	"github.com/niledreams/backend-travel/internal/obs"
	"github.com/niledreams/backend-travel/internal/pricing"
	"github.com/niledreams/backend-travel/internal/rewards"
	"github.com/niledreams/backend-travel/internal/store"
)

const travelDateLayout = "2006-01-02"

// PhaseSource provides the active reward phase ledger.
type PhaseSource interface {
	Phases(ctx context.Context) ([]rewards.Phase, error)
}

// Service owns the booking cart: entry lifecycle, reward redemption and the
// authoritative summary computation. Every mutation runs under a per-cart
// lock and a single transaction so concurrent requests against the same cart
// are serialized.
type Service struct {
	Repo           Repo
	Rewards        PhaseSource
	Lock           lock.Locker
	Bus            *events.Bus
	Validate       *validator.Validate
	Logger         zerolog.Logger
	Policy         config.RedemptionPolicy
	Currency       string
	WhatsAppNumber string
	MaxAdults      int
	MaxChildren    int
	MaxInfants     int
	LockTTL        time.Duration
	Now            func() time.Time
}

// ContactInput is the contact block clients attach to their cart.
type ContactInput struct {
	Name  string `json:"name" validate:"omitempty,min=2,max=120"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
}

// AddEntryInput creates a booking line from the trip detail form.
type AddEntryInput struct {
	TripSlug   string   `json:"trip_slug"`
	TravelDate string   `json:"travel_date"`
	Adults     int      `json:"adults"`
	Children   int      `json:"children"`
	Infants    int      `json:"infants"`
	OptionID   string   `json:"option_id"`
	ExtraIDs   []string `json:"extra_ids"`
}

// UpdateEntryInput patches an existing booking line. Nil fields are left
// untouched; an empty OptionID clears the selected option.
type UpdateEntryInput struct {
	TravelDate *string   `json:"travel_date"`
	Adults     *int      `json:"adults"`
	Children   *int      `json:"children"`
	Infants    *int      `json:"infants"`
	OptionID   *string   `json:"option_id"`
	ExtraIDs   *[]string `json:"extra_ids"`
}

// ApplyRewardInput redeems an unlocked phase against a cart entry.
type ApplyRewardInput struct {
	EntryID string `json:"entry_id"`
	PhaseID string `json:"phase_id"`
	TripID  string `json:"trip_id"`
}

// QuickAddInput is the form payload of the one-step add flow.
type QuickAddInput struct {
	Date   string
	Adults int
}

// QuickAddServiceView is an add-on offered right after a quick add.
type QuickAddServiceView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PriceDisplay string `json:"price_display"`
}

// QuickAddTripView is a related trip suggested after a quick add.
type QuickAddTripView struct {
	TripID                    string `json:"trip_id"`
	Slug                      string `json:"slug"`
	Title                     string `json:"title"`
	CardImageURL              string `json:"card_image_url,omitempty"`
	BasePricePerPersonDisplay string `json:"base_price_per_person_display"`
}

// QuickAddResult is the response of the quick-add flow.
type QuickAddResult struct {
	Summary         Summary
	InCart          bool
	TripID          string
	ToastMessage    string
	Services        []QuickAddServiceView
	Recommendations []QuickAddTripView
}

// EnsureCart loads the cart for a cookie token, creating one when the token
// is empty or no longer resolves. The second return reports creation.
func (s *Service) EnsureCart(ctx context.Context, token string) (store.Cart, bool, error) {
	if s == nil || s.Repo == nil {
		return store.Cart{}, false, errors.New("cart service not configured")
	}
	if token != "" {
		cart, err := s.Repo.GetCartByToken(ctx, token)
		if err == nil {
			return cart, false, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return store.Cart{}, false, err
		}
	}
	cart, err := s.Repo.CreateCart(ctx, uuid.NewString())
	if err != nil {
		return store.Cart{}, false, err
	}
	return cart, true, nil
}

// Summarize recomputes the authoritative cart summary.
func (s *Service) Summarize(ctx context.Context, cart store.Cart) (Summary, error) {
	phases, err := s.phaseList(ctx)
	if err != nil {
		return Summary{}, err
	}
	entries, err := s.Repo.ListEntries(ctx, cart.ID)
	if err != nil {
		return Summary{}, err
	}
	start := s.now()
	summary := s.buildSummary(cart, entries, phases)
	observeSummaryLatency(s.now().Sub(start))
	return summary, nil
}

// RewardsOverview returns the phase list and progression for the cart, as
// served on the standalone rewards endpoint.
func (s *Service) RewardsOverview(ctx context.Context, cart store.Cart) (RewardsView, error) {
	summary, err := s.Summarize(ctx, cart)
	if err != nil {
		return RewardsView{}, err
	}
	return summary.Rewards, nil
}

// UpdateContact validates and stores the cart contact block.
func (s *Service) UpdateContact(ctx context.Context, cart store.Cart, in ContactInput) (Summary, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if s.Validate != nil {
		if err := s.Validate.Struct(in); err != nil {
			return Summary{}, common.NewAppError("VALIDATION", "invalid contact details", http.StatusBadRequest, err)
		}
	}
	updated, err := s.Repo.UpdateCartContact(ctx, cart.ID, optional(in.Name), optional(in.Email), optional(in.Phone))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Summary{}, common.NewAppError("NOT_FOUND", "cart not found", http.StatusNotFound, err)
		}
		return Summary{}, err
	}
	return s.Summarize(ctx, updated)
}

// AddEntry books a trip into the cart from the detail page form. The travel
// date must not be in the past and the trip must have a derivable price.
func (s *Service) AddEntry(ctx context.Context, cart store.Cart, in AddEntryInput) (Summary, error) {
	trip, err := s.Repo.GetTripBySlug(ctx, strings.TrimSpace(in.TripSlug))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			countMutation("add_entry", "rejected")
			return Summary{}, common.NewAppError("NOT_FOUND", "trip not found", http.StatusNotFound, err)
		}
		return Summary{}, err
	}

	date, err := time.Parse(travelDateLayout, strings.TrimSpace(in.TravelDate))
	if err != nil {
		countMutation("add_entry", "rejected")
		return Summary{}, common.NewAppError("VALIDATION", "travel date must be YYYY-MM-DD", http.StatusBadRequest, err)
	}
	if date.Before(s.today()) {
		countMutation("add_entry", "rejected")
		return Summary{}, common.NewAppError("VALIDATION", "travel date is in the past", http.StatusBadRequest, nil)
	}

	entry, err := s.newEntry(ctx, trip, date, in.Adults, in.Children, in.Infants, in.OptionID, in.ExtraIDs)
	if err != nil {
		countMutation("add_entry", "rejected")
		return Summary{}, err
	}

	summary, _, err := s.mutate(ctx, cart, func(ctx context.Context, tx EntryTx, _ []rewards.Phase) error {
		var insertErr error
		entry, insertErr = tx.InsertEntry(ctx, entry)
		return insertErr
	})
	if err != nil {
		countMutation("add_entry", "error")
		return Summary{}, err
	}
	countMutation("add_entry", "ok")
	s.emit(ctx, events.TopicBookingAdded, bookingEvent(cart.ID, entry))
	return summary, nil
}

// QuickAdd books a trip in one step with default travelers. Dates earlier
// than today are clamped up to today instead of rejected; adding a trip that
// is already in the cart is a no-op reported through InCart.
func (s *Service) QuickAdd(ctx context.Context, cart store.Cart, tripSlug string, in QuickAddInput) (QuickAddResult, error) {
	trip, err := s.Repo.GetTripBySlug(ctx, strings.TrimSpace(tripSlug))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			countQuickAdd("rejected")
			return QuickAddResult{}, common.NewAppError("NOT_FOUND", "trip not found", http.StatusNotFound, err)
		}
		return QuickAddResult{}, err
	}

	today := s.today()
	date := today
	if raw := strings.TrimSpace(in.Date); raw != "" {
		if parsed, parseErr := time.Parse(travelDateLayout, raw); parseErr == nil && parsed.After(today) {
			date = parsed
		}
	}
	adults := in.Adults
	if adults < 1 {
		adults = 1
	}

	entry, err := s.newEntry(ctx, trip, date, adults, 0, 0, "", nil)
	if err != nil {
		countQuickAdd("rejected")
		return QuickAddResult{}, err
	}

	result := QuickAddResult{TripID: trip.ID, InCart: true}
	added := false
	summary, _, err := s.mutate(ctx, cart, func(ctx context.Context, tx EntryTx, _ []rewards.Phase) error {
		existing, listErr := tx.ListEntries(ctx)
		if listErr != nil {
			return listErr
		}
		for _, e := range existing {
			if e.TripID == trip.ID {
				result.ToastMessage = trip.Title + " is already in your booking list."
				return nil
			}
		}
		inserted, insertErr := tx.InsertEntry(ctx, entry)
		if insertErr != nil {
			return insertErr
		}
		entry = inserted
		added = true
		result.ToastMessage = trip.Title + " added to your booking list."
		return nil
	})
	if err != nil {
		countQuickAdd("error")
		return QuickAddResult{}, err
	}
	result.Summary = summary

	result.Services = s.quickAddServices(ctx, trip)
	result.Recommendations = s.quickAddRecommendations(ctx, trip, summary)
	countQuickAdd("ok")
	if added {
		s.emit(ctx, events.TopicBookingAdded, bookingEvent(cart.ID, entry))
	}
	return result, nil
}

// UpdateEntry patches travelers, date, option or extras on a booking line.
// A previously applied reward that no longer validates after the change is
// dropped silently rather than erroring.
func (s *Service) UpdateEntry(ctx context.Context, cart store.Cart, entryID string, in UpdateEntryInput) (Summary, error) {
	var updated store.CartEntry
	summary, _, err := s.mutate(ctx, cart, func(ctx context.Context, tx EntryTx, _ []rewards.Phase) error {
		entry, getErr := tx.GetEntry(ctx, entryID)
		if getErr != nil {
			if errors.Is(getErr, store.ErrNotFound) {
				return common.NewAppError("NOT_FOUND", "cart entry not found", http.StatusNotFound, getErr)
			}
			return getErr
		}
		patched, patchErr := s.patchEntry(ctx, entry, in)
		if patchErr != nil {
			return patchErr
		}
		var updateErr error
		updated, updateErr = tx.UpdateEntry(ctx, patched)
		return updateErr
	})
	if err != nil {
		countMutation("update_entry", mutationResult(err))
		return Summary{}, err
	}
	countMutation("update_entry", "ok")
	s.emit(ctx, events.TopicBookingUpdated, bookingEvent(cart.ID, updated))
	return summary, nil
}

// RemoveEntry deletes a booking line. Dropping the entry can re-lock phases;
// any reward application depending on a re-locked phase is cascaded away.
func (s *Service) RemoveEntry(ctx context.Context, cart store.Cart, entryID string) (Summary, error) {
	var removed store.CartEntry
	summary, _, err := s.mutate(ctx, cart, func(ctx context.Context, tx EntryTx, _ []rewards.Phase) error {
		entry, getErr := tx.GetEntry(ctx, entryID)
		if getErr != nil {
			if errors.Is(getErr, store.ErrNotFound) {
				return common.NewAppError("NOT_FOUND", "cart entry not found", http.StatusNotFound, getErr)
			}
			return getErr
		}
		removed = entry
		return tx.DeleteEntry(ctx, entryID)
	})
	if err != nil {
		countMutation("remove_entry", mutationResult(err))
		return Summary{}, err
	}
	countMutation("remove_entry", "ok")
	s.emit(ctx, events.TopicBookingRemoved, bookingEvent(cart.ID, removed))
	return summary, nil
}

// ApplyReward redeems an unlocked, eligible phase against an entry. Under the
// single-redemption policy any other applied reward in the cart is replaced.
func (s *Service) ApplyReward(ctx context.Context, cart store.Cart, in ApplyRewardInput) (Summary, error) {
	summary, _, err := s.mutate(ctx, cart, func(ctx context.Context, tx EntryTx, phases []rewards.Phase) error {
		entry, getErr := tx.GetEntry(ctx, in.EntryID)
		if getErr != nil {
			if errors.Is(getErr, store.ErrNotFound) {
				return common.NewAppError("REWARD_INVALID", "cart entry not found", http.StatusNotFound, getErr)
			}
			return getErr
		}
		if in.TripID != "" && in.TripID != entry.TripID {
			return common.NewAppError("REWARD_INVALID", "trip does not match the cart entry", http.StatusUnprocessableEntity, rewards.ErrTripNotEligible)
		}
		phase, ok := rewards.FindPhase(phases, in.PhaseID)
		if !ok {
			return common.NewAppError("REWARD_INVALID", "reward phase not found", http.StatusNotFound, rewards.ErrPhaseNotFound)
		}

		entries, listErr := tx.ListEntries(ctx)
		if listErr != nil {
			return listErr
		}
		var total int64
		for _, e := range entries {
			total += pricing.PreDiscountTotal(pricingEntry(e))
		}
		if !phase.Unlocked(total) {
			return common.NewAppError("REWARD_LOCKED", "reward phase is not unlocked yet", http.StatusUnprocessableEntity, rewards.ErrPhaseLocked)
		}
		if !phase.Eligible(entry.TripID) {
			return common.NewAppError("REWARD_INELIGIBLE", "trip is not eligible for this reward", http.StatusUnprocessableEntity, rewards.ErrTripNotEligible)
		}

		if s.Policy != config.RedemptionPerEntry {
			if _, clearErr := tx.ClearAppliedPhases(ctx); clearErr != nil {
				return clearErr
			}
		}
		phaseID := phase.ID
		return tx.SetAppliedPhase(ctx, entry.ID, &phaseID)
	})
	if err != nil {
		countRewardApplied(mutationResult(err))
		return Summary{}, err
	}
	countRewardApplied("ok")
	s.emit(ctx, events.TopicRewardApplied, rewardEvent(cart.ID, in.EntryID, in.PhaseID))
	return summary, nil
}

// RemoveReward clears the reward applied to an entry, a no-op when none is.
func (s *Service) RemoveReward(ctx context.Context, cart store.Cart, entryID string) (Summary, error) {
	var hadReward bool
	var phaseID string
	summary, _, err := s.mutate(ctx, cart, func(ctx context.Context, tx EntryTx, _ []rewards.Phase) error {
		entry, getErr := tx.GetEntry(ctx, entryID)
		if getErr != nil {
			if errors.Is(getErr, store.ErrNotFound) {
				return common.NewAppError("REWARD_INVALID", "cart entry not found", http.StatusNotFound, getErr)
			}
			return getErr
		}
		if entry.AppliedPhaseID == nil {
			return nil
		}
		hadReward = true
		phaseID = *entry.AppliedPhaseID
		return tx.SetAppliedPhase(ctx, entryID, nil)
	})
	if err != nil {
		return Summary{}, err
	}
	if hadReward {
		s.emit(ctx, events.TopicRewardRemoved, rewardEvent(cart.ID, entryID, phaseID))
	}
	return summary, nil
}

// mutate wraps a cart mutation in the per-cart lock and a transaction, then
// revalidates reward applications and recomputes the summary before commit.
func (s *Service) mutate(ctx context.Context, cart store.Cart, fn func(ctx context.Context, tx EntryTx, phases []rewards.Phase) error) (Summary, []string, error) {
	if s == nil || s.Repo == nil {
		return Summary{}, nil, errors.New("cart service not configured")
	}
	phases, err := s.phaseList(ctx)
	if err != nil {
		return Summary{}, nil, err
	}

	var (
		summary Summary
		dropped []string
	)
	err = s.withCartLock(ctx, cart.ID, func(ctx context.Context) error {
		return s.Repo.Mutate(ctx, cart.ID, func(tx EntryTx) error {
			if fnErr := fn(ctx, tx, phases); fnErr != nil {
				return fnErr
			}
			entries, d, recErr := s.reconcile(ctx, tx, phases)
			if recErr != nil {
				return recErr
			}
			dropped = d
			start := s.now()
			summary = s.buildSummary(cart, entries, phases)
			observeSummaryLatency(s.now().Sub(start))
			return nil
		})
	})
	if err != nil {
		return Summary{}, nil, err
	}
	s.reportDropped(ctx, cart, dropped)
	return summary, dropped, nil
}

// reconcile drops reward applications whose phase re-locked or whose trip
// fell out of the eligible set, returning the post-reconciliation entries.
func (s *Service) reconcile(ctx context.Context, tx EntryTx, phases []rewards.Phase) ([]store.CartEntry, []string, error) {
	entries, err := tx.ListEntries(ctx)
	if err != nil {
		return nil, nil, err
	}
	apps := applications(entries)
	var total int64
	for _, e := range entries {
		total += pricing.PreDiscountTotal(pricingEntry(e))
	}
	prog := rewards.Resolve(phases, total, apps)
	_, dropped := rewards.Revalidate(phases, prog, apps)
	for _, entryID := range dropped {
		if err := tx.SetAppliedPhase(ctx, entryID, nil); err != nil {
			return nil, nil, fmt.Errorf("drop stale reward: %w", err)
		}
		for i := range entries {
			if entries[i].ID == entryID {
				entries[i].AppliedPhaseID = nil
			}
		}
	}
	return entries, dropped, nil
}

func (s *Service) newEntry(ctx context.Context, trip store.Trip, date time.Time, adults, children, infants int, optionID string, extraIDs []string) (store.CartEntry, error) {
	entry := store.CartEntry{
		TripID:              trip.ID,
		TripSlug:            trip.Slug,
		TripTitle:           trip.Title,
		TravelDate:          date,
		Adults:              pricing.ClampCount(adults, 1, s.MaxAdults),
		Children:            pricing.ClampCount(children, 0, s.MaxChildren),
		Infants:             pricing.ClampCount(infants, 0, s.MaxInfants),
		BasePriceCents:      trip.BasePriceCents,
		ChildBasePriceCents: trip.ChildPriceCents,
	}

	effectivePrice := trip.BasePriceCents
	if optionID != "" {
		option, err := s.Repo.GetTripOption(ctx, trip.ID, optionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return store.CartEntry{}, common.NewAppError("VALIDATION", "unknown trip option", http.StatusBadRequest, err)
			}
			return store.CartEntry{}, err
		}
		snap := &OptionSnapshot{
			ID:              option.ID,
			Label:           option.Label,
			PriceCents:      trip.BasePriceCents,
			ChildPriceCents: option.ChildPriceCents,
		}
		if option.PriceCents != nil {
			snap.PriceCents = *option.PriceCents
		}
		entry.OptionJSON = encodeOption(snap)
		effectivePrice = snap.PriceCents
	}
	if effectivePrice <= 0 {
		return store.CartEntry{}, common.NewAppError("VALIDATION", "trip has no bookable price", http.StatusBadRequest, nil)
	}

	if len(extraIDs) > 0 {
		extras, err := s.Repo.ListTripExtrasByIDs(ctx, trip.ID, extraIDs)
		if err != nil {
			return store.CartEntry{}, err
		}
		snaps := make([]ExtraSnapshot, 0, len(extras))
		for _, extra := range extras {
			snaps = append(snaps, ExtraSnapshot{ID: extra.ID, Name: extra.Name, PriceCents: extra.PriceCents})
		}
		entry.ExtrasJSON = encodeExtras(snaps)
	}
	return entry, nil
}

func (s *Service) patchEntry(ctx context.Context, entry store.CartEntry, in UpdateEntryInput) (store.CartEntry, error) {
	if in.TravelDate != nil {
		date, err := time.Parse(travelDateLayout, strings.TrimSpace(*in.TravelDate))
		if err != nil {
			return store.CartEntry{}, common.NewAppError("VALIDATION", "travel date must be YYYY-MM-DD", http.StatusBadRequest, err)
		}
		if date.Before(s.today()) {
			return store.CartEntry{}, common.NewAppError("VALIDATION", "travel date is in the past", http.StatusBadRequest, nil)
		}
		entry.TravelDate = date
	}
	if in.Adults != nil {
		entry.Adults = pricing.ClampCount(*in.Adults, 1, s.MaxAdults)
	}
	if in.Children != nil {
		entry.Children = pricing.ClampCount(*in.Children, 0, s.MaxChildren)
	}
	if in.Infants != nil {
		entry.Infants = pricing.ClampCount(*in.Infants, 0, s.MaxInfants)
	}
	if in.OptionID != nil {
		if *in.OptionID == "" {
			entry.OptionJSON = nil
		} else {
			option, err := s.Repo.GetTripOption(ctx, entry.TripID, *in.OptionID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return store.CartEntry{}, common.NewAppError("VALIDATION", "unknown trip option", http.StatusBadRequest, err)
				}
				return store.CartEntry{}, err
			}
			snap := &OptionSnapshot{
				ID:              option.ID,
				Label:           option.Label,
				PriceCents:      entry.BasePriceCents,
				ChildPriceCents: option.ChildPriceCents,
			}
			if option.PriceCents != nil {
				snap.PriceCents = *option.PriceCents
			}
			entry.OptionJSON = encodeOption(snap)
		}
	}
	if in.ExtraIDs != nil {
		if len(*in.ExtraIDs) == 0 {
			entry.ExtrasJSON = nil
		} else {
			extras, err := s.Repo.ListTripExtrasByIDs(ctx, entry.TripID, *in.ExtraIDs)
			if err != nil {
				return store.CartEntry{}, err
			}
			snaps := make([]ExtraSnapshot, 0, len(extras))
			for _, extra := range extras {
				snaps = append(snaps, ExtraSnapshot{ID: extra.ID, Name: extra.Name, PriceCents: extra.PriceCents})
			}
			entry.ExtrasJSON = encodeExtras(snaps)
		}
	}
	return entry, nil
}

func (s *Service) quickAddServices(ctx context.Context, trip store.Trip) []QuickAddServiceView {
	extras, err := s.Repo.ListTripExtras(ctx, trip.ID)
	if err != nil {
		s.Logger.Warn().Err(err).Str("trip_id", trip.ID).Msg("load quick-add services")
		return nil
	}
	views := make([]QuickAddServiceView, 0, len(extras))
	for _, extra := range extras {
		views = append(views, QuickAddServiceView{
			ID:           extra.ID,
			Name:         extra.Name,
			PriceDisplay: pricing.FormatCents(extra.PriceCents),
		})
	}
	return views
}

func (s *Service) quickAddRecommendations(ctx context.Context, trip store.Trip, summary Summary) []QuickAddTripView {
	if len(trip.RecommendedTripIDs) == 0 {
		return nil
	}
	inCart := map[string]bool{}
	for _, entry := range summary.Entries {
		inCart[entry.TripID] = true
	}
	related, err := s.Repo.ListTripsByIDs(ctx, trip.RecommendedTripIDs)
	if err != nil {
		s.Logger.Warn().Err(err).Str("trip_id", trip.ID).Msg("load quick-add recommendations")
		return nil
	}
	var views []QuickAddTripView
	for _, rel := range related {
		if inCart[rel.ID] || !rel.QuickAddEligible {
			continue
		}
		views = append(views, QuickAddTripView{
			TripID:                    rel.ID,
			Slug:                      rel.Slug,
			Title:                     rel.Title,
			CardImageURL:              rel.CardImageURL,
			BasePricePerPersonDisplay: pricing.FormatCents(rel.BasePriceCents),
		})
	}
	return views
}

func (s *Service) reportDropped(ctx context.Context, cart store.Cart, dropped []string) {
	if len(dropped) == 0 {
		return
	}
	if obs.RewardDroppedTotal != nil {
		obs.RewardDroppedTotal.Add(float64(len(dropped)))
	}
	for _, entryID := range dropped {
		s.emit(ctx, events.TopicRewardDropped, map[string]string{
			"cart_id":  cart.ID,
			"entry_id": entryID,
		})
	}
}

func (s *Service) withCartLock(ctx context.Context, cartID string, fn func(context.Context) error) error {
	if s.Lock.R == nil {
		return fn(ctx)
	}
	return s.Lock.WithLock(ctx, lock.CartKey(cartID), s.LockTTL, fn)
}

func (s *Service) phaseList(ctx context.Context) ([]rewards.Phase, error) {
	if s.Rewards == nil {
		return nil, nil
	}
	return s.Rewards.Phases(ctx)
}

func (s *Service) emit(ctx context.Context, topic string, payload any) {
	if s.Bus == nil {
		return
	}
	if _, err := s.Bus.Emit(ctx, topic, payload); err != nil {
		s.Logger.Warn().Err(err).Str("topic", topic).Msg("emit cart event")
	}
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) currency() string {
	if s == nil || s.Currency == "" {
		return "USD"
	}
	return s.Currency
}

func bookingEvent(cartID string, entry store.CartEntry) map[string]string {
	return map[string]string{
		"cart_id":   cartID,
		"entry_id":  entry.ID,
		"trip_id":   entry.TripID,
		"trip_slug": entry.TripSlug,
	}
}

func rewardEvent(cartID, entryID, phaseID string) map[string]string {
	return map[string]string{
		"cart_id":  cartID,
		"entry_id": entryID,
		"phase_id": phaseID,
	}
}

func mutationResult(err error) string {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return "rejected"
	}
	return "error"
}

func countMutation(operation, result string) {
	if obs.CartMutationTotal != nil {
		obs.CartMutationTotal.WithLabelValues(operation, result).Inc()
	}
}

func countRewardApplied(result string) {
	if obs.RewardAppliedTotal != nil {
		obs.RewardAppliedTotal.WithLabelValues(result).Inc()
	}
}

func countQuickAdd(result string) {
	if obs.QuickAddTotal != nil {
		obs.QuickAddTotal.WithLabelValues(result).Inc()
	}
}

func observeSummaryLatency(d time.Duration) {
	if obs.CartSummaryLatency != nil {
		obs.CartSummaryLatency.Observe(obs.DurationMillis(d))
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
