package pricing

// Money represents a monetary value stored in minor units (cents).
type Money = int64

// Option is a trip pricing option selected for a cart entry. ChildPriceCents
// falls back to PriceCents when nil.
type Option struct {
	ID              string
	Label           string
	PriceCents      Money
	ChildPriceCents *Money
}

// Extra is an add-on service booked alongside a trip.
type Extra struct {
	ID         string
	Name       string
	PriceCents Money
}

// Entry carries the pricing inputs of a single booking line. Infants are
// collected for the traveler summary but never billed.
type Entry struct {
	Adults              int
	Children            int
	Infants             int
	BasePriceCents      Money
	ChildBasePriceCents *Money
	Option              *Option
	Extras              []Extra
}

// Resolve determines the effective adult and child per-person prices for the
// entry. A selected option overrides the trip base prices; a missing child
// price falls back to the adult price at the same level.
func Resolve(e Entry) (adult, child Money) {
	adult = e.BasePriceCents
	if e.ChildBasePriceCents != nil {
		child = *e.ChildBasePriceCents
	} else {
		child = adult
	}
	if e.Option != nil {
		adult = e.Option.PriceCents
		if e.Option.ChildPriceCents != nil {
			child = *e.Option.ChildPriceCents
		} else {
			child = adult
		}
	}
	if adult < 0 {
		adult = 0
	}
	if child < 0 {
		child = 0
	}
	return adult, child
}

// BaseTotal is the per-person price multiplied out over billed travelers.
func BaseTotal(e Entry) Money {
	adult, child := Resolve(e)
	adults := e.Adults
	if adults < 0 {
		adults = 0
	}
	children := e.Children
	if children < 0 {
		children = 0
	}
	return adult*Money(adults) + child*Money(children)
}

// ExtrasTotal sums the selected extras. Negative prices count as zero.
func ExtrasTotal(e Entry) Money {
	var total Money
	for _, extra := range e.Extras {
		if extra.PriceCents <= 0 {
			continue
		}
		total += extra.PriceCents
	}
	return total
}

// PreDiscountTotal is the entry total before any reward discount.
func PreDiscountTotal(e Entry) Money {
	return BaseTotal(e) + ExtrasTotal(e)
}

// BilledTravelers counts the travelers contributing to price. Infants never
// bill, and the count is floored at one.
func BilledTravelers(e Entry) int {
	count := e.Adults + e.Children
	if count < 1 {
		return 1
	}
	return count
}

// ClampCount clamps a traveler count to [min, max]. A max of zero or less
// means unbounded.
func ClampCount(value, min, max int) int {
	if value < min {
		value = min
	}
	if max > 0 && value > max {
		value = max
	}
	return value
}
