package ev

import "testing"

func TestCardPriceable(t *testing.T) {
	tests := []struct {
		name      string
		price     *float64
		threshold float64
		want      bool
	}{
		{"no price", nil, 1.0, false},
		{"below threshold", price(0.5), 1.0, false},
		{"at threshold", price(1.0), 1.0, true},
		{"above threshold", price(2.5), 1.0, true},
		{"zero threshold keeps zero prices", price(0), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := Card{Price: tt.price}
			if got := card.Priceable(tt.threshold); got != tt.want {
				t.Errorf("Priceable(%v) = %v, want %v", tt.threshold, got, tt.want)
			}
		})
	}
}

func TestRarityIsKnown(t *testing.T) {
	for _, rarity := range KnownRarities {
		if !rarity.IsKnown() {
			t.Errorf("%q should be known", rarity)
		}
	}
	if Rarity("legendary").IsKnown() {
		t.Error("legendary should not be known")
	}
}

func TestBoosterTypeIsKnown(t *testing.T) {
	for _, typ := range []BoosterType{PlayBooster, DraftBooster, SetBooster, CollectorBooster} {
		if !typ.IsKnown() {
			t.Errorf("%q should be known", typ)
		}
	}
	if BoosterType("jumpstart").IsKnown() {
		t.Error("jumpstart should not be known")
	}
}
