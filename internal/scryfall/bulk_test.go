package scryfall

import (
	"strings"
	"testing"

	"github.com/ramonehamilton/sealed-ev/internal/ev"
)

func str(s string) *string {
	return &s
}

func paperCard(id, name, rarity string) BulkCard {
	return BulkCard{
		ID:      id,
		Name:    name,
		SetCode: "blb",
		SetName: "Bloomburrow",
		SetType: "expansion",
		Rarity:  rarity,
		Layout:  "normal",
		Games:   []string{"paper", "mtgo"},
	}
}

func TestProcessCard(t *testing.T) {
	raw := paperCard("abc", "Chase Mythic", "mythic")
	raw.Prices = Prices{EUR: str("12.34"), EURFoil: str("20.00")}
	raw.CollectorNumber = "123"
	raw.ReleasedAt = "2024-08-02"

	card, ok := ProcessCard(raw)
	if !ok {
		t.Fatal("ProcessCard() dropped a paper card")
	}
	if card.ID != "abc" || card.Name != "Chase Mythic" {
		t.Errorf("card identity = %s / %s", card.ID, card.Name)
	}
	if card.Rarity != ev.RarityMythic {
		t.Errorf("Rarity = %q", card.Rarity)
	}
	if card.Price == nil || *card.Price != 12.34 {
		t.Errorf("Price = %v", card.Price)
	}
	if card.FoilPrice == nil || *card.FoilPrice != 20.00 {
		t.Errorf("FoilPrice = %v", card.FoilPrice)
	}
	if card.CollectorNumber != "123" || card.ReleasedAt != "2024-08-02" {
		t.Errorf("card = %+v", card)
	}
}

func TestProcessCardFilters(t *testing.T) {
	digital := paperCard("1", "Arena Only", "rare")
	digital.Games = []string{"arena"}
	if _, ok := ProcessCard(digital); ok {
		t.Error("digital-only card should be dropped")
	}

	tokenSet := paperCard("2", "Soldier", "common")
	tokenSet.SetType = "token"
	if _, ok := ProcessCard(tokenSet); ok {
		t.Error("token set card should be dropped")
	}

	tokenLayout := paperCard("3", "Soldier", "common")
	tokenLayout.Layout = "token"
	if _, ok := ProcessCard(tokenLayout); ok {
		t.Error("token layout card should be dropped")
	}
}

func TestProcessCardUnknownRarity(t *testing.T) {
	raw := paperCard("1", "Odd Print", "legendary")

	card, ok := ProcessCard(raw)
	if !ok {
		t.Fatal("ProcessCard() dropped the card")
	}
	if card.Rarity != ev.RarityCommon {
		t.Errorf("Rarity = %q, want common fallback", card.Rarity)
	}
}

func TestProcessCardKeepsSpecialRarity(t *testing.T) {
	card, ok := ProcessCard(paperCard("1", "Special Print", "special"))
	if !ok {
		t.Fatal("ProcessCard() dropped the card")
	}
	if card.Rarity != ev.RaritySpecial {
		t.Errorf("Rarity = %q, want special", card.Rarity)
	}
}

func TestProcessCardMissingPrices(t *testing.T) {
	raw := paperCard("1", "Unpriced", "rare")
	raw.Prices = Prices{EUR: str(""), EURFoil: str("not a number")}

	card, ok := ProcessCard(raw)
	if !ok {
		t.Fatal("ProcessCard() dropped the card")
	}
	if card.Price != nil {
		t.Errorf("Price = %v, want nil for empty string", card.Price)
	}
	if card.FoilPrice != nil {
		t.Errorf("FoilPrice = %v, want nil for unparseable string", card.FoilPrice)
	}
}

func TestDecodeCards(t *testing.T) {
	data := `[
		{"id":"1","name":"Paper Rare","set":"blb","set_name":"Bloomburrow","set_type":"expansion","rarity":"rare","layout":"normal","games":["paper"],"prices":{"eur":"3.50"}},
		{"id":"2","name":"Arena Card","set":"blb","set_name":"Bloomburrow","set_type":"expansion","rarity":"rare","layout":"normal","games":["arena"],"prices":{}},
		{"id":"3","name":"Paper Common","set":"blb","set_name":"Bloomburrow","set_type":"expansion","rarity":"common","layout":"normal","games":["paper","mtgo"],"prices":{}}
	]`

	cards, err := decodeCards(strings.NewReader(data))
	if err != nil {
		t.Fatalf("decodeCards() failed: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("got %d cards, want 2", len(cards))
	}
	if cards[0].Name != "Paper Rare" || cards[1].Name != "Paper Common" {
		t.Errorf("cards = %s, %s", cards[0].Name, cards[1].Name)
	}
	if cards[0].Price == nil || *cards[0].Price != 3.50 {
		t.Errorf("Price = %v", cards[0].Price)
	}
}

func TestDecodeCardsRejectsNonArray(t *testing.T) {
	if _, err := decodeCards(strings.NewReader(`{"object":"list"}`)); err == nil {
		t.Error("decodeCards() should reject a non-array payload")
	}
}
