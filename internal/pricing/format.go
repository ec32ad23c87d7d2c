package pricing

import "strconv"

// FormatCents renders a cent amount as a display string with thousands
// separators, e.g. 123456 -> "1,234.56". Formatting happens only at the
// presentation edge; all arithmetic stays in integer cents.
func FormatCents(cents Money) string {
	negative := cents < 0
	if negative {
		cents = -cents
	}
	whole := cents / 100
	frac := cents % 100

	digits := strconv.FormatInt(whole, 10)
	var grouped []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, d)
	}

	out := string(grouped) + "." + pad2(frac)
	if negative {
		return "-" + out
	}
	return out
}

func pad2(v Money) string {
	if v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}

// FormatTravelers builds the human traveler summary, e.g. "2 travelers" or
// "1 traveler + 2 infants".
func FormatTravelers(billed, infants int) string {
	if billed < 1 {
		billed = 1
	}
	label := strconv.Itoa(billed) + " travelers"
	if billed == 1 {
		label = "1 traveler"
	}
	if infants > 0 {
		suffix := " infants"
		if infants == 1 {
			suffix = " infant"
		}
		label += " + " + strconv.Itoa(infants) + suffix
	}
	return label
}
