package rewards

// Application records that a cart entry redeems a phase discount. TripID is
// the entry's trip at apply time and must stay inside the phase's eligible
// set for the application to survive revalidation.
type Application struct {
	EntryID string
	PhaseID string
	TripID  string
}

// Progression is the authoritative unlock snapshot computed after every cart
// mutation.
type Progression struct {
	TotalCents           int64
	Currency             string
	UnlockedPhaseIDs     []string
	NextPhaseID          string
	RemainingToNextCents int64
	HasNext              bool
	AppliedEntryIDs      map[string][]string
}

// Resolve computes the progression for the given phases, cart pre-discount
// total and reward applications. It is a pure function: callers re-run it
// after each mutation rather than maintaining incremental unlock state.
func Resolve(phases []Phase, totalCents int64, apps []Application) Progression {
	ordered := Sort(phases)
	currency := ""
	if len(ordered) > 0 {
		currency = ordered[0].Currency
	}

	prog := Progression{
		TotalCents:      totalCents,
		Currency:        currency,
		AppliedEntryIDs: make(map[string][]string, len(ordered)),
	}
	for _, phase := range ordered {
		if phase.Unlocked(totalCents) {
			prog.UnlockedPhaseIDs = append(prog.UnlockedPhaseIDs, phase.ID)
			continue
		}
		if !prog.HasNext {
			prog.HasNext = true
			prog.NextPhaseID = phase.ID
			remaining := phase.ThresholdCents - totalCents
			if remaining < 0 {
				remaining = 0
			}
			prog.RemainingToNextCents = remaining
		}
	}

	for _, app := range apps {
		prog.AppliedEntryIDs[app.PhaseID] = append(prog.AppliedEntryIDs[app.PhaseID], app.EntryID)
	}
	return prog
}

// Unlocked reports whether the progression contains the phase id.
func (p Progression) Unlocked(phaseID string) bool {
	for _, id := range p.UnlockedPhaseIDs {
		if id == phaseID {
			return true
		}
	}
	return false
}

// Revalidate filters applications against the current progression and phase
// ledger. Applications pointing at re-locked phases, removed phases, or trips
// that fell out of a phase's eligible set are dropped silently; the surviving
// set and the dropped entry ids are returned.
func Revalidate(phases []Phase, prog Progression, apps []Application) (kept []Application, dropped []string) {
	for _, app := range apps {
		phase, ok := FindPhase(phases, app.PhaseID)
		if !ok || !prog.Unlocked(app.PhaseID) || !phase.Eligible(app.TripID) {
			dropped = append(dropped, app.EntryID)
			continue
		}
		kept = append(kept, app)
	}
	return kept, dropped
}
