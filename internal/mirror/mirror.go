// Package mirror is the reference implementation of the client-side cart
// recomputation. Browser code replays the same clamps, cents arithmetic and
// discount formula for instant feedback, then overwrites its state with the
// server's cart summary after every round-trip. Keeping the reducer here, next
// to the authoritative engine, lets tests prove the two computations agree.
package mirror

import (
	"github.com/niledreams/backend-travel/internal/cart"
	"github.com/niledreams/backend-travel/internal/pricing"
	"github.com/niledreams/backend-travel/internal/rewards"
)

// Entry is one optimistic booking line held by the client.
type Entry struct {
	ID                  string
	TripID              string
	Adults              int
	Children            int
	Infants             int
	BasePriceCents      int64
	ChildBasePriceCents *int64
	Option              *pricing.Option
	Extras              []pricing.Extra
	AppliedPhaseID      string
}

// State is the explicit client cart state. It is only mutated through Reduce
// and fully rebuilt by Reconcile, never by ad-hoc writes.
type State struct {
	Entries  []Entry
	Phases   []rewards.Phase
	Currency string
	// Dirty marks state mutated locally since the last server confirmation.
	Dirty bool
}

// Action mutates the state through Reduce.
type Action interface {
	apply(State) State
}

// SetPhases replaces the known phase ledger.
type SetPhases struct{ Phases []rewards.Phase }

// UpsertEntry inserts or replaces an entry by id.
type UpsertEntry struct{ Entry Entry }

// RemoveEntry deletes an entry by id.
type RemoveEntry struct{ EntryID string }

// SetTravelers patches traveler counts on an entry, clamped like the server.
type SetTravelers struct {
	EntryID     string
	Adults      int
	Children    int
	Infants     int
	MaxAdults   int
	MaxChildren int
	MaxInfants  int
}

// ApplyReward attaches a phase to an entry, replacing any prior application
// on that entry.
type ApplyReward struct {
	EntryID string
	PhaseID string
}

// RemoveReward clears an entry's reward.
type RemoveReward struct{ EntryID string }

func (a SetPhases) apply(s State) State {
	s.Phases = rewards.Sort(a.Phases)
	return s
}

func (a UpsertEntry) apply(s State) State {
	entries := make([]Entry, 0, len(s.Entries)+1)
	replaced := false
	for _, entry := range s.Entries {
		if entry.ID == a.Entry.ID {
			entries = append(entries, a.Entry)
			replaced = true
			continue
		}
		entries = append(entries, entry)
	}
	if !replaced {
		entries = append(entries, a.Entry)
	}
	s.Entries = entries
	s.Dirty = true
	return s
}

func (a RemoveEntry) apply(s State) State {
	entries := make([]Entry, 0, len(s.Entries))
	for _, entry := range s.Entries {
		if entry.ID != a.EntryID {
			entries = append(entries, entry)
		}
	}
	s.Entries = entries
	s.Dirty = true
	return s
}

func (a SetTravelers) apply(s State) State {
	for i := range s.Entries {
		if s.Entries[i].ID != a.EntryID {
			continue
		}
		s.Entries[i].Adults = pricing.ClampCount(a.Adults, 1, a.MaxAdults)
		s.Entries[i].Children = pricing.ClampCount(a.Children, 0, a.MaxChildren)
		s.Entries[i].Infants = pricing.ClampCount(a.Infants, 0, a.MaxInfants)
		s.Dirty = true
	}
	return s
}

func (a ApplyReward) apply(s State) State {
	for i := range s.Entries {
		if s.Entries[i].ID == a.EntryID {
			s.Entries[i].AppliedPhaseID = a.PhaseID
			s.Dirty = true
		}
	}
	return s
}

func (a RemoveReward) apply(s State) State {
	for i := range s.Entries {
		if s.Entries[i].ID == a.EntryID {
			s.Entries[i].AppliedPhaseID = ""
			s.Dirty = true
		}
	}
	return s
}

// Reduce applies an action and returns the next state. The input state is
// not mutated.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	s.Entries = append([]Entry(nil), s.Entries...)
	return a.apply(s)
}

// EntryTotals is the per-entry breakdown of a recomputation.
type EntryTotals struct {
	EntryID          string
	PreDiscountCents int64
	DiscountCents    int64
	GrandCents       int64
	AppliedPhaseID   string
}

// Computation is the provisional result the UI renders until the server
// response arrives.
type Computation struct {
	PreDiscountTotalCents int64
	DiscountTotalCents    int64
	GrandTotalCents       int64
	Entries               []EntryTotals
	Progression           rewards.Progression
}

// pricingInput converts a mirror entry into the pricing engine's input.
func pricingInput(e Entry) pricing.Entry {
	return pricing.Entry{
		Adults:              e.Adults,
		Children:            e.Children,
		Infants:             e.Infants,
		BasePriceCents:      e.BasePriceCents,
		ChildBasePriceCents: e.ChildBasePriceCents,
		Option:              e.Option,
		Extras:              e.Extras,
	}
}

// Recompute replays the server pricing and rewards logic over the local
// state. Applications whose phase is locked or whose trip is ineligible are
// ignored, matching the server's revalidation cascade.
func Recompute(s State) Computation {
	var preTotal int64
	pre := make(map[string]int64, len(s.Entries))
	for _, entry := range s.Entries {
		cents := pricing.PreDiscountTotal(pricingInput(entry))
		pre[entry.ID] = cents
		preTotal += cents
	}

	apps := make([]rewards.Application, 0, len(s.Entries))
	for _, entry := range s.Entries {
		if entry.AppliedPhaseID != "" {
			apps = append(apps, rewards.Application{
				EntryID: entry.ID,
				PhaseID: entry.AppliedPhaseID,
				TripID:  entry.TripID,
			})
		}
	}
	prog := rewards.Resolve(s.Phases, preTotal, apps)
	kept, _ := rewards.Revalidate(s.Phases, prog, apps)
	keptByEntry := make(map[string]rewards.Application, len(kept))
	for _, app := range kept {
		keptByEntry[app.EntryID] = app
	}

	out := Computation{PreDiscountTotalCents: preTotal}
	for _, entry := range s.Entries {
		totals := EntryTotals{EntryID: entry.ID, PreDiscountCents: pre[entry.ID]}
		if app, ok := keptByEntry[entry.ID]; ok {
			phase, found := rewards.FindPhase(s.Phases, app.PhaseID)
			if found {
				totals.AppliedPhaseID = phase.ID
				totals.DiscountCents = rewards.Discount(totals.PreDiscountCents, phase.DiscountPercent)
			}
		}
		totals.GrandCents = totals.PreDiscountCents - totals.DiscountCents
		out.DiscountTotalCents += totals.DiscountCents
		out.GrandTotalCents += totals.GrandCents
		out.Entries = append(out.Entries, totals)
	}
	out.Progression = rewards.Resolve(s.Phases, preTotal, kept)
	return out
}

// Reconcile overwrites the local state with the server's authoritative
// summary. Entries the server no longer reports are dropped, traveler counts
// and applied rewards are adopted from the response, and pricing snapshots of
// entries the server confirmed stay in place. The server always wins.
func Reconcile(s State, summary cart.Summary) State {
	byID := make(map[string]Entry, len(s.Entries))
	for _, entry := range s.Entries {
		byID[entry.ID] = entry
	}

	next := State{Phases: s.Phases, Currency: summary.Currency}
	for _, view := range summary.Entries {
		entry, ok := byID[view.ID]
		if !ok {
			entry = Entry{ID: view.ID, TripID: view.TripID}
			// A server-created entry carries no local snapshot; derive the
			// per-person price from the confirmed totals.
			if billed := view.BilledTravelerCount; billed > 0 {
				entry.BasePriceCents = view.PreDiscountTotalCents / int64(billed)
			}
		}
		entry.TripID = view.TripID
		entry.Adults = view.AdultCount
		entry.Children = view.ChildCount
		entry.Infants = view.InfantCount
		entry.AppliedPhaseID = ""
		if view.AppliedReward != nil {
			entry.AppliedPhaseID = view.AppliedReward.PhaseID
		}
		next.Entries = append(next.Entries, entry)
	}
	return next
}
