package pricing

import "testing"

func money(v int64) *Money {
	m := Money(v)
	return &m
}

func TestResolveChildFallsBackToAdult(t *testing.T) {
	entry := Entry{BasePriceCents: 10_000}
	adult, child := Resolve(entry)
	if adult != 10_000 || child != 10_000 {
		t.Fatalf("expected 10000/10000, got %d/%d", adult, child)
	}
}

func TestResolveOptionOverridesBase(t *testing.T) {
	entry := Entry{
		BasePriceCents:      10_000,
		ChildBasePriceCents: money(8_000),
		Option:              &Option{PriceCents: 15_000},
	}
	adult, child := Resolve(entry)
	if adult != 15_000 {
		t.Fatalf("expected option adult price 15000, got %d", adult)
	}
	// Option without a child price falls back to the option adult price,
	// not the trip's child price.
	if child != 15_000 {
		t.Fatalf("expected option child fallback 15000, got %d", child)
	}
}

func TestResolveOptionChildPrice(t *testing.T) {
	entry := Entry{
		BasePriceCents: 10_000,
		Option:         &Option{PriceCents: 15_000, ChildPriceCents: money(9_000)},
	}
	_, child := Resolve(entry)
	if child != 9_000 {
		t.Fatalf("expected option child price 9000, got %d", child)
	}
}

func TestResolveNegativePricesClampToZero(t *testing.T) {
	entry := Entry{BasePriceCents: -500, ChildBasePriceCents: money(-300)}
	adult, child := Resolve(entry)
	if adult != 0 || child != 0 {
		t.Fatalf("expected 0/0, got %d/%d", adult, child)
	}
}

func TestBaseTotalBasicPricing(t *testing.T) {
	// Adult price 100.00, 2 adults, no children, no extras.
	entry := Entry{Adults: 2, BasePriceCents: 10_000}
	if got := PreDiscountTotal(entry); got != 20_000 {
		t.Fatalf("expected 20000, got %d", got)
	}
}

func TestPreDiscountTotalWithChildrenAndExtras(t *testing.T) {
	entry := Entry{
		Adults:              2,
		Children:            1,
		Infants:             1,
		BasePriceCents:      10_000,
		ChildBasePriceCents: money(6_000),
		Extras: []Extra{
			{PriceCents: 2_500},
			{PriceCents: -100}, // ignored
		},
	}
	if got := BaseTotal(entry); got != 26_000 {
		t.Fatalf("expected base total 26000, got %d", got)
	}
	if got := ExtrasTotal(entry); got != 2_500 {
		t.Fatalf("expected extras total 2500, got %d", got)
	}
	if got := PreDiscountTotal(entry); got != 28_500 {
		t.Fatalf("expected pre-discount total 28500, got %d", got)
	}
}

func TestBilledTravelersIgnoresInfants(t *testing.T) {
	entry := Entry{Adults: 1, Children: 2, Infants: 3}
	if got := BilledTravelers(entry); got != 3 {
		t.Fatalf("expected 3 billed travelers, got %d", got)
	}
	if got := BilledTravelers(Entry{Infants: 2}); got != 1 {
		t.Fatalf("expected floor of 1, got %d", got)
	}
}

func TestClampCountIdempotent(t *testing.T) {
	cases := []struct {
		value, min, max, want int
	}{
		{-3, 1, 0, 1},
		{0, 0, 0, 0},
		{5, 1, 4, 4},
		{2, 1, 4, 2},
	}
	for _, tc := range cases {
		once := ClampCount(tc.value, tc.min, tc.max)
		if once != tc.want {
			t.Fatalf("clamp(%d,%d,%d) = %d, want %d", tc.value, tc.min, tc.max, once, tc.want)
		}
		if twice := ClampCount(once, tc.min, tc.max); twice != once {
			t.Fatalf("clamp not idempotent: %d then %d", once, twice)
		}
	}
}

func TestFormatCents(t *testing.T) {
	cases := map[Money]string{
		0:         "0.00",
		5:         "0.05",
		123456:    "1,234.56",
		120000000: "1,200,000.00",
		-9950:     "-99.50",
	}
	for cents, want := range cases {
		if got := FormatCents(cents); got != want {
			t.Fatalf("FormatCents(%d) = %q, want %q", cents, got, want)
		}
	}
}

func TestFormatTravelers(t *testing.T) {
	if got := FormatTravelers(1, 0); got != "1 traveler" {
		t.Fatalf("got %q", got)
	}
	if got := FormatTravelers(3, 1); got != "3 travelers + 1 infant" {
		t.Fatalf("got %q", got)
	}
}
