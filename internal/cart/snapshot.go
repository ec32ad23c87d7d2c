package cart

import (
	"encoding/json"

	"github.com/niledreams/backend-travel/internal/pricing"
	"github.com/niledreams/backend-travel/internal/store"
)

// OptionSnapshot is the pricing option captured on an entry at add time.
// Entries keep their own copy so later catalog edits never reprice a cart.
type OptionSnapshot struct {
	ID              string `json:"id"`
	Label           string `json:"label"`
	PriceCents      int64  `json:"price_cents"`
	ChildPriceCents *int64 `json:"child_price_cents,omitempty"`
}

// ExtraSnapshot is an add-on captured on an entry at add time.
type ExtraSnapshot struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

func decodeOption(raw []byte) *OptionSnapshot {
	if len(raw) == 0 {
		return nil
	}
	var snap OptionSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil || snap.ID == "" {
		return nil
	}
	return &snap
}

func decodeExtras(raw []byte) []ExtraSnapshot {
	if len(raw) == 0 {
		return nil
	}
	var snaps []ExtraSnapshot
	if err := json.Unmarshal(raw, &snaps); err != nil {
		return nil
	}
	return snaps
}

func encodeOption(snap *OptionSnapshot) []byte {
	if snap == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil
	}
	return data
}

func encodeExtras(snaps []ExtraSnapshot) []byte {
	if len(snaps) == 0 {
		return nil
	}
	data, err := json.Marshal(snaps)
	if err != nil {
		return nil
	}
	return data
}

// pricingEntry converts a stored entry into the pricing engine's input.
func pricingEntry(e store.CartEntry) pricing.Entry {
	in := pricing.Entry{
		Adults:              e.Adults,
		Children:            e.Children,
		Infants:             e.Infants,
		BasePriceCents:      e.BasePriceCents,
		ChildBasePriceCents: e.ChildBasePriceCents,
	}
	if opt := decodeOption(e.OptionJSON); opt != nil {
		in.Option = &pricing.Option{
			ID:              opt.ID,
			Label:           opt.Label,
			PriceCents:      opt.PriceCents,
			ChildPriceCents: opt.ChildPriceCents,
		}
	}
	for _, extra := range decodeExtras(e.ExtrasJSON) {
		in.Extras = append(in.Extras, pricing.Extra{
			ID:         extra.ID,
			Name:       extra.Name,
			PriceCents: extra.PriceCents,
		})
	}
	return in
}
