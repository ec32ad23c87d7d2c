package rewards

import "testing"

func ledger() []Phase {
	return []Phase{
		{ID: "p3", Name: "Gold", ThresholdCents: 150_000, DiscountPercent: 20, Currency: "USD", Position: 3},
		{ID: "p1", Name: "Bronze", ThresholdCents: 50_000, DiscountPercent: 10, Currency: "USD", Position: 1,
			Trips: []PhaseTrip{{TripID: "trip-a"}}},
		{ID: "p2", Name: "Silver", ThresholdCents: 100_000, DiscountPercent: 15, Currency: "USD", Position: 2,
			Trips: []PhaseTrip{{TripID: "trip-a"}, {TripID: "trip-b"}}},
	}
}

func TestSortAscendingThreshold(t *testing.T) {
	ordered := Sort(ledger())
	if ordered[0].ID != "p1" || ordered[1].ID != "p2" || ordered[2].ID != "p3" {
		t.Fatalf("unexpected order: %s %s %s", ordered[0].ID, ordered[1].ID, ordered[2].ID)
	}
}

func TestUnlockedPhasesMonotonic(t *testing.T) {
	phases := ledger()
	totals := []int64{0, 49_999, 50_000, 99_999, 100_000, 150_000, 1_000_000}
	var prev []string
	for _, total := range totals {
		unlocked := UnlockedPhases(phases, total)
		if len(unlocked) < len(prev) {
			t.Fatalf("unlock set shrank between totals: %v -> %v", prev, unlocked)
		}
		for i, id := range prev {
			if unlocked[i] != id {
				t.Fatalf("unlock set not a superset at total %d", total)
			}
		}
		prev = unlocked
	}
}

func TestEqualThresholdsUnlockTogether(t *testing.T) {
	phases := []Phase{
		{ID: "a", ThresholdCents: 10_000, Position: 2},
		{ID: "b", ThresholdCents: 10_000, Position: 1},
	}
	unlocked := UnlockedPhases(phases, 10_000)
	if len(unlocked) != 2 {
		t.Fatalf("expected both phases unlocked, got %v", unlocked)
	}
	// Display order follows configured position when thresholds tie.
	if unlocked[0] != "b" || unlocked[1] != "a" {
		t.Fatalf("expected position order b,a got %v", unlocked)
	}
}

func TestNextPhaseAndRemaining(t *testing.T) {
	phases := ledger()
	next := NextPhase(phases, 60_000)
	if next == nil || next.ID != "p2" {
		t.Fatalf("expected next phase p2, got %+v", next)
	}
	if remaining := RemainingToNext(phases, 60_000); remaining != 40_000 {
		t.Fatalf("expected 40000 remaining, got %d", remaining)
	}
	if next := NextPhase(phases, 200_000); next != nil {
		t.Fatalf("expected no next phase, got %s", next.ID)
	}
	if remaining := RemainingToNext(phases, 200_000); remaining != 0 {
		t.Fatalf("expected 0 remaining, got %d", remaining)
	}
	if next := NextPhase(nil, 0); next != nil {
		t.Fatalf("expected nil next for empty ledger")
	}
}

func TestDiscountBounds(t *testing.T) {
	if got := Discount(60_000, 10); got != 6_000 {
		t.Fatalf("expected 6000, got %d", got)
	}
	// Half-up rounding: 12345 * 15% = 1851.75 -> 1852.
	if got := Discount(12_345, 15); got != 1_852 {
		t.Fatalf("expected 1852, got %d", got)
	}
	if got := Discount(10_000, 100); got != 10_000 {
		t.Fatalf("expected full discount, got %d", got)
	}
	if got := Discount(10_000, 150); got != 10_000 {
		t.Fatalf("expected clamp at total, got %d", got)
	}
	if got := Discount(10_000, 0); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := Discount(-5, 10); got != 0 {
		t.Fatalf("expected 0 for negative total, got %d", got)
	}
}

func TestResolveProgression(t *testing.T) {
	phases := ledger()
	apps := []Application{
		{EntryID: "e1", PhaseID: "p1", TripID: "trip-a"},
		{EntryID: "e2", PhaseID: "p2", TripID: "trip-b"},
	}
	prog := Resolve(phases, 120_000, apps)
	if len(prog.UnlockedPhaseIDs) != 2 {
		t.Fatalf("expected 2 unlocked phases, got %v", prog.UnlockedPhaseIDs)
	}
	if !prog.HasNext || prog.NextPhaseID != "p3" {
		t.Fatalf("expected next phase p3, got %+v", prog)
	}
	if prog.RemainingToNextCents != 30_000 {
		t.Fatalf("expected 30000 remaining, got %d", prog.RemainingToNextCents)
	}
	if got := prog.AppliedEntryIDs["p1"]; len(got) != 1 || got[0] != "e1" {
		t.Fatalf("expected p1 applied to e1, got %v", got)
	}
	if prog.Currency != "USD" {
		t.Fatalf("expected USD currency, got %q", prog.Currency)
	}
}

func TestRevalidateDropsRelockedPhase(t *testing.T) {
	phases := ledger()
	apps := []Application{
		{EntryID: "e1", PhaseID: "p1", TripID: "trip-a"},
		{EntryID: "e2", PhaseID: "p2", TripID: "trip-b"},
	}
	// Total dropped below the p2 threshold: its application must cascade out.
	prog := Resolve(phases, 60_000, apps)
	kept, dropped := Revalidate(phases, prog, apps)
	if len(kept) != 1 || kept[0].EntryID != "e1" {
		t.Fatalf("expected only e1 kept, got %+v", kept)
	}
	if len(dropped) != 1 || dropped[0] != "e2" {
		t.Fatalf("expected e2 dropped, got %v", dropped)
	}
}

func TestRevalidateDropsIneligibleTrip(t *testing.T) {
	phases := ledger()
	apps := []Application{{EntryID: "e1", PhaseID: "p1", TripID: "trip-z"}}
	prog := Resolve(phases, 500_000, apps)
	kept, dropped := Revalidate(phases, prog, apps)
	if len(kept) != 0 || len(dropped) != 1 {
		t.Fatalf("expected application dropped, kept=%v dropped=%v", kept, dropped)
	}
}
