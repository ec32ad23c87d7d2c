package cart

import (
	"strings"

	"github.com/niledreams/backend-travel/internal/common"
	"github.com/niledreams/backend-travel/internal/pricing"
	"github.com/niledreams/backend-travel/internal/rewards"
	"github.com/niledreams/backend-travel/internal/store"
)

// Summary is the authoritative cart snapshot returned after every read and
// mutation. Clients overwrite any optimistic local state with it.
type Summary struct {
	Count                   int          `json:"count"`
	Currency                string       `json:"currency"`
	Contact                 *ContactView `json:"contact,omitempty"`
	Entries                 []EntryView  `json:"entries"`
	TotalCents              int64        `json:"total_cents"`
	TotalDisplay            string       `json:"total_display"`
	PreDiscountTotalCents   int64        `json:"pre_discount_total_cents"`
	PreDiscountTotalDisplay string       `json:"pre_discount_total_display"`
	DiscountTotalCents      int64        `json:"discount_total_cents"`
	DiscountTotalDisplay    string       `json:"discount_total_display"`
	Rewards                 RewardsView  `json:"rewards"`
	BookingHelpURL          string       `json:"booking_help_url,omitempty"`
}

// ContactView is the contact block captured on the cart.
type ContactView struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// EntryView is one booking line within the summary.
type EntryView struct {
	ID                        string             `json:"id"`
	TripID                    string             `json:"trip_id"`
	TripSlug                  string             `json:"trip_slug"`
	TripTitle                 string             `json:"trip_title"`
	TravelDate                string             `json:"travel_date"`
	TravelDateDisplay         string             `json:"travel_date_display"`
	AdultCount                int                `json:"adult_count"`
	ChildCount                int                `json:"child_count"`
	InfantCount               int                `json:"infant_count"`
	BilledTravelerCount       int                `json:"billed_traveler_count"`
	TravelerLabel             string             `json:"traveler_label"`
	Currency                  string             `json:"currency"`
	AdultPriceDisplay         string             `json:"adult_price_display"`
	ChildPriceDisplay         string             `json:"child_price_display,omitempty"`
	HasChildPrice             bool               `json:"has_child_price"`
	Option                    *EntryOptionView   `json:"option,omitempty"`
	Extras                    []EntryExtraView   `json:"extras,omitempty"`
	PreDiscountTotalCents     int64              `json:"pre_discount_total_cents"`
	GrandTotalCents           int64              `json:"grand_total_cents"`
	GrandTotalDisplay         string             `json:"grand_total_display"`
	OriginalGrandTotalCents   int64              `json:"original_grand_total_cents"`
	OriginalGrandTotalDisplay string             `json:"original_grand_total_display"`
	DiscountTotalCents        int64              `json:"discount_total_cents"`
	DiscountTotalDisplay      string             `json:"discount_total_display"`
	AppliedReward             *AppliedRewardView `json:"applied_reward,omitempty"`
}

// EntryOptionView is the selected pricing option on an entry.
type EntryOptionView struct {
	ID                string `json:"id"`
	Label             string `json:"label"`
	PriceDisplay      string `json:"price_display"`
	ChildPriceDisplay string `json:"child_price_display,omitempty"`
}

// EntryExtraView is a selected add-on on an entry.
type EntryExtraView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PriceDisplay string `json:"price_display"`
}

// AppliedRewardView describes the reward discounting an entry.
type AppliedRewardView struct {
	PhaseID         string `json:"phase_id"`
	PhaseName       string `json:"phase_name"`
	DiscountPercent int    `json:"discount_percent"`
	DiscountCents   int64  `json:"discount_cents"`
	DiscountDisplay string `json:"discount_display"`
}

// RewardsView is the rewards panel payload within the summary.
type RewardsView struct {
	Phases               []PhaseView  `json:"phases"`
	Progress             ProgressView `json:"progress"`
	DiscountTotalCents   int64        `json:"discount_total_cents"`
	DiscountTotalDisplay string       `json:"discount_total_display"`
	HasRedeemedTrip      bool         `json:"has_redeemed_trip"`
}

// PhaseView renders one reward phase with its eligible trips.
type PhaseView struct {
	ID                     string          `json:"id"`
	Name                   string          `json:"name"`
	Slug                   string          `json:"slug,omitempty"`
	Headline               string          `json:"headline,omitempty"`
	Description            string          `json:"description,omitempty"`
	Position               int             `json:"position"`
	ThresholdAmountCents   int64           `json:"threshold_amount_cents"`
	ThresholdAmountDisplay string          `json:"threshold_amount_display"`
	DiscountPercent        int             `json:"discount_percent"`
	Currency               string          `json:"currency,omitempty"`
	Unlocked               bool            `json:"unlocked"`
	AppliedEntryIDs        []string        `json:"applied_entry_ids"`
	TripOptions            []PhaseTripView `json:"trip_options"`
}

// PhaseTripView renders one trip eligible for a phase discount.
type PhaseTripView struct {
	TripID                     string          `json:"trip_id"`
	Slug                       string          `json:"slug"`
	Title                      string          `json:"title"`
	Position                   int             `json:"position"`
	CardImageURL               string          `json:"card_image_url,omitempty"`
	BasePricePerPersonCents    int64           `json:"base_price_per_person_cents"`
	BasePricePerPersonDisplay  string          `json:"base_price_per_person_display"`
	ChildPricePerPersonDisplay string          `json:"child_price_per_person_display,omitempty"`
	HasChildPrice              bool            `json:"has_child_price"`
	Comparison                 *ComparisonView `json:"comparison,omitempty"`
	IsRedeemed                 bool            `json:"is_redeemed"`
	RedeemedEntryIDs           []string        `json:"redeemed_entry_ids,omitempty"`
}

// ComparisonView previews what a phase trip would cost at the cart's traveler
// count against its full price.
type ComparisonView struct {
	TravelerCount               int    `json:"traveler_count"`
	TravelerLabel               string `json:"traveler_label"`
	FullPriceCents              int64  `json:"full_price_cents"`
	FullPriceDisplay            string `json:"full_price_display"`
	RewardPriceCents            int64  `json:"reward_price_cents"`
	RewardPriceDisplay          string `json:"reward_price_display"`
	DiscountCents               int64  `json:"discount_cents"`
	DiscountDisplay             string `json:"discount_display"`
	FullPricePerPersonDisplay   string `json:"full_price_per_person_display"`
	RewardPricePerPersonDisplay string `json:"reward_price_per_person_display"`
}

// ProgressView is the unlock progression snapshot.
type ProgressView struct {
	TotalCents             int64    `json:"total_cents"`
	TotalDisplay           string   `json:"total_display"`
	Currency               string   `json:"currency"`
	UnlockedPhaseIDs       []string `json:"unlocked_phase_ids"`
	NextPhaseID            string   `json:"next_phase_id,omitempty"`
	RemainingToNextCents   int64    `json:"remaining_to_next_cents"`
	RemainingToNextDisplay string   `json:"remaining_to_next_display"`
}

const travelDateDisplayLayout = "Jan 02, 2006"

func (s *Service) buildSummary(cart store.Cart, entries []store.CartEntry, phases []rewards.Phase) Summary {
	currency := s.currency()
	apps := applications(entries)
	phaseByID := make(map[string]rewards.Phase, len(phases))
	for _, phase := range phases {
		phaseByID[phase.ID] = phase
	}

	var (
		preDiscountTotal int64
		discountTotal    int64
		grandTotal       int64
		views            = make([]EntryView, 0, len(entries))
	)
	for _, entry := range entries {
		in := pricingEntry(entry)
		pre := pricing.PreDiscountTotal(in)
		preDiscountTotal += pre

		var discount int64
		var applied *AppliedRewardView
		if entry.AppliedPhaseID != nil {
			if phase, ok := phaseByID[*entry.AppliedPhaseID]; ok {
				discount = rewards.Discount(pre, phase.DiscountPercent)
				applied = &AppliedRewardView{
					PhaseID:         phase.ID,
					PhaseName:       phase.Name,
					DiscountPercent: phase.DiscountPercent,
					DiscountCents:   discount,
					DiscountDisplay: pricing.FormatCents(discount),
				}
			}
		}
		grand := pre - discount
		discountTotal += discount
		grandTotal += grand

		views = append(views, s.entryView(entry, in, pre, grand, discount, applied, currency))
	}

	prog := rewards.Resolve(phases, preDiscountTotal, apps)
	rewardsView := s.rewardsView(entries, phases, prog, apps, discountTotal, currency)

	summary := Summary{
		Count:                   len(views),
		Currency:                currency,
		Contact:                 contactView(cart),
		Entries:                 views,
		TotalCents:              grandTotal,
		TotalDisplay:            pricing.FormatCents(grandTotal),
		PreDiscountTotalCents:   preDiscountTotal,
		PreDiscountTotalDisplay: pricing.FormatCents(preDiscountTotal),
		DiscountTotalCents:      discountTotal,
		DiscountTotalDisplay:    pricing.FormatCents(discountTotal),
		Rewards:                 rewardsView,
	}
	summary.BookingHelpURL = s.bookingHelpLink(views)
	return summary
}

func (s *Service) entryView(entry store.CartEntry, in pricing.Entry, pre, grand, discount int64, applied *AppliedRewardView, currency string) EntryView {
	adultPrice, childPrice := pricing.Resolve(in)
	billed := pricing.BilledTravelers(in)
	hasChildPrice := childPrice != adultPrice

	view := EntryView{
		ID:                        entry.ID,
		TripID:                    entry.TripID,
		TripSlug:                  entry.TripSlug,
		TripTitle:                 entry.TripTitle,
		TravelDate:                entry.TravelDate.Format("2006-01-02"),
		TravelDateDisplay:         entry.TravelDate.Format(travelDateDisplayLayout),
		AdultCount:                entry.Adults,
		ChildCount:                entry.Children,
		InfantCount:               entry.Infants,
		BilledTravelerCount:       billed,
		TravelerLabel:             pricing.FormatTravelers(billed, entry.Infants),
		Currency:                  currency,
		AdultPriceDisplay:         pricing.FormatCents(adultPrice),
		HasChildPrice:             hasChildPrice,
		PreDiscountTotalCents:     pre,
		GrandTotalCents:           grand,
		GrandTotalDisplay:         pricing.FormatCents(grand),
		OriginalGrandTotalCents:   pre,
		OriginalGrandTotalDisplay: pricing.FormatCents(pre),
		DiscountTotalCents:        discount,
		DiscountTotalDisplay:      pricing.FormatCents(discount),
		AppliedReward:             applied,
	}
	if hasChildPrice {
		view.ChildPriceDisplay = pricing.FormatCents(childPrice)
	}
	if opt := decodeOption(entry.OptionJSON); opt != nil {
		optView := &EntryOptionView{
			ID:           opt.ID,
			Label:        opt.Label,
			PriceDisplay: pricing.FormatCents(opt.PriceCents),
		}
		if opt.ChildPriceCents != nil && *opt.ChildPriceCents != opt.PriceCents {
			optView.ChildPriceDisplay = pricing.FormatCents(*opt.ChildPriceCents)
		}
		view.Option = optView
	}
	for _, extra := range decodeExtras(entry.ExtrasJSON) {
		view.Extras = append(view.Extras, EntryExtraView{
			ID:           extra.ID,
			Name:         extra.Name,
			PriceDisplay: pricing.FormatCents(extra.PriceCents),
		})
	}
	return view
}

func (s *Service) rewardsView(entries []store.CartEntry, phases []rewards.Phase, prog rewards.Progression, apps []rewards.Application, discountTotal int64, currency string) RewardsView {
	// Comparisons use the traveler count of the matching cart entry when the
	// trip is already booked, otherwise the largest billed count in the cart.
	billedByTrip := map[string]int{}
	defaultTravelers := 0
	for _, entry := range entries {
		billed := pricing.BilledTravelers(pricingEntry(entry))
		if _, ok := billedByTrip[entry.TripID]; !ok {
			billedByTrip[entry.TripID] = billed
		}
		if billed > defaultTravelers {
			defaultTravelers = billed
		}
	}

	appliedByPhase := map[string][]string{}
	redeemedByPhaseTrip := map[string]map[string][]string{}
	hasRedeemed := false
	for _, app := range apps {
		appliedByPhase[app.PhaseID] = append(appliedByPhase[app.PhaseID], app.EntryID)
		byTrip, ok := redeemedByPhaseTrip[app.PhaseID]
		if !ok {
			byTrip = map[string][]string{}
			redeemedByPhaseTrip[app.PhaseID] = byTrip
		}
		byTrip[app.TripID] = append(byTrip[app.TripID], app.EntryID)
		hasRedeemed = true
	}

	phaseViews := make([]PhaseView, 0, len(phases))
	for _, phase := range rewards.Sort(phases) {
		view := PhaseView{
			ID:                     phase.ID,
			Name:                   phase.Name,
			Slug:                   phase.Slug,
			Headline:               phase.Headline,
			Description:            phase.Description,
			Position:               phase.Position,
			ThresholdAmountCents:   phase.ThresholdCents,
			ThresholdAmountDisplay: pricing.FormatCents(phase.ThresholdCents),
			DiscountPercent:        phase.DiscountPercent,
			Currency:               phase.Currency,
			Unlocked:               prog.Unlocked(phase.ID),
			AppliedEntryIDs:        orEmpty(appliedByPhase[phase.ID]),
			TripOptions:            make([]PhaseTripView, 0, len(phase.Trips)),
		}
		for _, trip := range phase.Trips {
			tripView := PhaseTripView{
				TripID:                    trip.TripID,
				Slug:                      trip.Slug,
				Title:                     trip.Title,
				Position:                  trip.Position,
				CardImageURL:              trip.CardImageURL,
				BasePricePerPersonCents:   trip.BasePriceCents,
				BasePricePerPersonDisplay: pricing.FormatCents(trip.BasePriceCents),
				HasChildPrice:             trip.ChildPriceCents != trip.BasePriceCents,
			}
			if tripView.HasChildPrice {
				tripView.ChildPricePerPersonDisplay = pricing.FormatCents(trip.ChildPriceCents)
			}
			if redeemed := redeemedByPhaseTrip[phase.ID][trip.TripID]; len(redeemed) > 0 {
				tripView.IsRedeemed = true
				tripView.RedeemedEntryIDs = redeemed
			}
			travelers := billedByTrip[trip.TripID]
			if travelers == 0 {
				travelers = defaultTravelers
			}
			tripView.Comparison = comparison(trip, phase.DiscountPercent, travelers)
			view.TripOptions = append(view.TripOptions, tripView)
		}
		phaseViews = append(phaseViews, view)
	}

	progView := ProgressView{
		TotalCents:             prog.TotalCents,
		TotalDisplay:           pricing.FormatCents(prog.TotalCents),
		Currency:               currency,
		UnlockedPhaseIDs:       orEmpty(prog.UnlockedPhaseIDs),
		RemainingToNextCents:   prog.RemainingToNextCents,
		RemainingToNextDisplay: pricing.FormatCents(prog.RemainingToNextCents),
	}
	if prog.HasNext {
		progView.NextPhaseID = prog.NextPhaseID
	}

	return RewardsView{
		Phases:               phaseViews,
		Progress:             progView,
		DiscountTotalCents:   discountTotal,
		DiscountTotalDisplay: pricing.FormatCents(discountTotal),
		HasRedeemedTrip:      hasRedeemed,
	}
}

func comparison(trip rewards.PhaseTrip, discountPercent, travelers int) *ComparisonView {
	if travelers <= 0 || trip.BasePriceCents <= 0 {
		return nil
	}
	fullCents := trip.BasePriceCents * int64(travelers)
	discountCents := rewards.Discount(fullCents, discountPercent)
	rewardCents := fullCents - discountCents
	perPerson := rewardCents / int64(travelers)
	return &ComparisonView{
		TravelerCount:               travelers,
		TravelerLabel:               pricing.FormatTravelers(travelers, 0),
		FullPriceCents:              fullCents,
		FullPriceDisplay:            pricing.FormatCents(fullCents),
		RewardPriceCents:            rewardCents,
		RewardPriceDisplay:          pricing.FormatCents(rewardCents),
		DiscountCents:               discountCents,
		DiscountDisplay:             pricing.FormatCents(discountCents),
		FullPricePerPersonDisplay:   pricing.FormatCents(trip.BasePriceCents),
		RewardPricePerPersonDisplay: pricing.FormatCents(perPerson),
	}
}

func (s *Service) bookingHelpLink(entries []EntryView) string {
	if s.WhatsAppNumber == "" {
		return ""
	}
	lines := []string{"Hi Nile Dreams, I need help with my booking list."}
	for _, entry := range entries {
		parts := make([]string, 0, 4)
		if entry.TripTitle != "" {
			parts = append(parts, entry.TripTitle)
		}
		if entry.TravelDateDisplay != "" {
			parts = append(parts, entry.TravelDateDisplay)
		}
		if entry.TravelerLabel != "" {
			parts = append(parts, entry.TravelerLabel)
		}
		if entry.GrandTotalDisplay != "" {
			parts = append(parts, entry.Currency+" "+entry.GrandTotalDisplay)
		}
		if len(parts) > 0 {
			lines = append(lines, "- "+strings.Join(parts, " / "))
		}
	}
	return common.WhatsAppLink(s.WhatsAppNumber, strings.Join(lines, "\n"))
}

func contactView(cart store.Cart) *ContactView {
	view := ContactView{}
	if cart.ContactName != nil {
		view.Name = *cart.ContactName
	}
	if cart.ContactEmail != nil {
		view.Email = *cart.ContactEmail
	}
	if cart.ContactPhone != nil {
		view.Phone = *cart.ContactPhone
	}
	if view == (ContactView{}) {
		return nil
	}
	return &view
}

func applications(entries []store.CartEntry) []rewards.Application {
	var apps []rewards.Application
	for _, entry := range entries {
		if entry.AppliedPhaseID == nil {
			continue
		}
		apps = append(apps, rewards.Application{
			EntryID: entry.ID,
			PhaseID: *entry.AppliedPhaseID,
			TripID:  entry.TripID,
		})
	}
	return apps
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
