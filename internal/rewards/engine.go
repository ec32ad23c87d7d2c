package rewards

import (
	"errors"
	"sort"
)

var (
	// ErrPhaseNotFound is returned when the referenced phase does not exist.
	ErrPhaseNotFound = errors.New("reward phase not found")
	// ErrPhaseLocked is returned when applying a phase whose threshold the
	// cart has not reached.
	ErrPhaseLocked = errors.New("reward phase not unlocked")
	// ErrTripNotEligible is returned when the entry's trip is outside the
	// phase's eligible trip set.
	ErrTripNotEligible = errors.New("trip not eligible for reward phase")
)

// PhaseTrip links a phase to an eligible trip together with the display data
// the rewards panel needs.
type PhaseTrip struct {
	TripID          string
	Slug            string
	Title           string
	Position        int
	CardImageURL    string
	BasePriceCents  int64
	ChildPriceCents int64
}

// Phase is a spend threshold unlocking a percentage discount for a set of
// eligible trips.
type Phase struct {
	ID              string
	Name            string
	Slug            string
	Headline        string
	Description     string
	Position        int
	ThresholdCents  int64
	DiscountPercent int
	Currency        string
	Trips           []PhaseTrip
}

// Eligible reports whether the trip belongs to the phase's eligible set.
func (p Phase) Eligible(tripID string) bool {
	for _, trip := range p.Trips {
		if trip.TripID == tripID {
			return true
		}
	}
	return false
}

// Unlocked reports whether the cart's pre-discount total reaches the phase
// threshold.
func (p Phase) Unlocked(totalCents int64) bool {
	return totalCents >= p.ThresholdCents
}

// Sort orders phases by ascending threshold. Phases with equal thresholds
// keep their configured position order so they unlock together but display
// deterministically.
func Sort(phases []Phase) []Phase {
	out := make([]Phase, len(phases))
	copy(out, phases)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ThresholdCents != out[j].ThresholdCents {
			return out[i].ThresholdCents < out[j].ThresholdCents
		}
		return out[i].Position < out[j].Position
	})
	return out
}

// UnlockedPhases returns the ids of every phase whose threshold is met,
// preserving ascending-threshold order.
func UnlockedPhases(phases []Phase, totalCents int64) []string {
	var ids []string
	for _, phase := range Sort(phases) {
		if phase.Unlocked(totalCents) {
			ids = append(ids, phase.ID)
		}
	}
	return ids
}

// NextPhase returns the lowest-threshold phase that is still locked, or nil
// when all phases are unlocked or none exist.
func NextPhase(phases []Phase, totalCents int64) *Phase {
	for _, phase := range Sort(phases) {
		if !phase.Unlocked(totalCents) {
			next := phase
			return &next
		}
	}
	return nil
}

// RemainingToNext is the additional spend needed to unlock the next phase,
// zero when every phase is already unlocked.
func RemainingToNext(phases []Phase, totalCents int64) int64 {
	next := NextPhase(phases, totalCents)
	if next == nil {
		return 0
	}
	remaining := next.ThresholdCents - totalCents
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Discount computes the phase discount for an entry's pre-discount total in
// cents, rounding half up. The result is clamped to [0, totalCents]; the
// percent is clamped to [0, 100].
func Discount(totalCents int64, percent int) int64 {
	if totalCents <= 0 || percent <= 0 {
		return 0
	}
	if percent > 100 {
		percent = 100
	}
	discount := (totalCents*int64(percent) + 50) / 100
	if discount > totalCents {
		discount = totalCents
	}
	return discount
}

// FindPhase looks up a phase by id.
func FindPhase(phases []Phase, id string) (Phase, bool) {
	for _, phase := range phases {
		if phase.ID == id {
			return phase, true
		}
	}
	return Phase{}, false
}
