package matching

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/brickops/backend/internal/model"
)

// stubSource serves a fixed inventory slice, filtering the way the real
// repository-backed source does.
type stubSource struct {
	items []model.InventoryItem
}

func (s *stubSource) BySKU(_ context.Context, sku string) ([]model.InventoryItem, error) {
	var out []model.InventoryItem
	for _, item := range s.items {
		if item.SKU != nil && *item.SKU == sku {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubSource) BySetNumber(_ context.Context, setNumber string) ([]model.InventoryItem, error) {
	var out []model.InventoryItem
	for _, item := range s.items {
		if item.SetNumber != nil && *item.SetNumber == setNumber {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubSource) ByTitleKeywords(_ context.Context, keywords []string) ([]model.InventoryItem, error) {
	var out []model.InventoryItem
	for _, item := range s.items {
		title := strings.ToLower(item.Title)
		for _, kw := range keywords {
			if strings.Contains(title, kw) {
				out = append(out, item)
				break
			}
		}
	}
	return out, nil
}

func newTestMatcher(items ...model.InventoryItem) *Matcher {
	m := NewMatcher(&stubSource{items: items})
	m.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	return m
}

func TestMatchSingleSKU(t *testing.T) {
	m := newTestMatcher(
		model.InventoryItem{ID: 1, SKU: strPtr("LG-75192-N"), Title: "Millennium Falcon", Status: model.InventoryListed},
	)
	run := NewContext()
	li := model.LineItem{SKU: strPtr("LG-75192-N"), Title: "LEGO 75192", Quantity: 1}

	got, err := m.Match(context.Background(), run, &li)
	if err != nil {
		t.Fatal(err)
	}
	if got.Outcome != OutcomeMatched || got.Method != MethodAutoSKU {
		t.Fatalf("outcome=%s method=%s", got.Outcome, got.Method)
	}
	if got.InventoryItemID != 1 || got.Confidence != 1.0 {
		t.Fatalf("id=%d confidence=%v", got.InventoryItemID, got.Confidence)
	}
	if !run.Claimed(1) {
		t.Fatal("matched item not claimed")
	}
}

func TestMatchMultipleSKUMatches(t *testing.T) {
	sku := "LG-21318-N"
	m := newTestMatcher(
		model.InventoryItem{ID: 1, SKU: strPtr(sku), Title: "Tree House", Status: model.InventoryBacklog},
		model.InventoryItem{ID: 2, SKU: strPtr(sku), Title: "Tree House", Status: model.InventoryListed},
	)
	li := model.LineItem{SKU: strPtr(sku), Title: "LEGO Ideas 21318", Quantity: 1}

	got, err := m.Match(context.Background(), NewContext(), &li)
	if err != nil {
		t.Fatal(err)
	}
	if got.Outcome != OutcomeManualRequired || got.Reason != ReasonMultipleSKUMatches {
		t.Fatalf("outcome=%s reason=%s", got.Outcome, got.Reason)
	}
	if len(got.Candidates) != 2 {
		t.Fatalf("candidates=%d want=2", len(got.Candidates))
	}
}

func TestMatchMultiQuantityAlwaysManual(t *testing.T) {
	// Even a unique SKU hit must go to an operator when quantity > 1.
	m := newTestMatcher(
		model.InventoryItem{ID: 1, SKU: strPtr("LG-10276-N"), Title: "Colosseum", Status: model.InventoryListed},
	)
	li := model.LineItem{SKU: strPtr("LG-10276-N"), Title: "LEGO 10276 x2", Quantity: 2}

	got, err := m.Match(context.Background(), NewContext(), &li)
	if err != nil {
		t.Fatal(err)
	}
	if got.Outcome != OutcomeManualRequired || got.Reason != ReasonMultiQuantity {
		t.Fatalf("outcome=%s reason=%s", got.Outcome, got.Reason)
	}
	if len(got.Candidates) != 1 {
		t.Fatalf("candidates=%d want=1", len(got.Candidates))
	}
}

func TestMatchMultiQuantityNoCandidates(t *testing.T) {
	m := newTestMatcher()
	li := model.LineItem{Title: "Bulk minifigure job lot", Quantity: 5}

	got, err := m.Match(context.Background(), NewContext(), &li)
	if err != nil {
		t.Fatal(err)
	}
	if got.Outcome != OutcomeManualRequired || got.Reason != ReasonMultiQuantity {
		t.Fatalf("outcome=%s reason=%s", got.Outcome, got.Reason)
	}
	if len(got.Candidates) != 0 {
		t.Fatalf("candidates=%d want=0", len(got.Candidates))
	}
}

func TestMatchSetNumberFallback(t *testing.T) {
	m := newTestMatcher(
		model.InventoryItem{ID: 7, SetNumber: strPtr("75192"), Title: "Millennium Falcon UCS", Status: model.InventoryBacklog},
	)
	li := model.LineItem{Title: "LEGO Star Wars 75192 Millennium Falcon", Quantity: 1}

	got, err := m.Match(context.Background(), NewContext(), &li)
	if err != nil {
		t.Fatal(err)
	}
	if got.Outcome != OutcomeMatched || got.Method != MethodAutoSetNumber {
		t.Fatalf("outcome=%s method=%s", got.Outcome, got.Method)
	}
	if got.InventoryItemID != 7 || got.Confidence != 0.9 {
		t.Fatalf("id=%d confidence=%v", got.InventoryItemID, got.Confidence)
	}
}

func TestMatchUnknownSKUFallsThroughToTitle(t *testing.T) {
	m := newTestMatcher(
		model.InventoryItem{ID: 3, SetNumber: strPtr("10276"), Title: "Colosseum", Status: model.InventoryListed},
	)
	li := model.LineItem{SKU: strPtr("UNKNOWN-SKU"), Title: "LEGO 10276 Colosseum", Quantity: 1}

	got, err := m.Match(context.Background(), NewContext(), &li)
	if err != nil {
		t.Fatal(err)
	}
	if got.Outcome != OutcomeMatched || got.Method != MethodAutoSetNumber {
		t.Fatalf("outcome=%s method=%s", got.Outcome, got.Method)
	}
}

func TestMatchAmbiguousSetNumber(t *testing.T) {
	m := newTestMatcher(
		model.InventoryItem{ID: 1, SetNumber: strPtr("21318"), Title: "Tree House", Status: model.InventoryBacklog},
		model.InventoryItem{ID: 2, SetNumber: strPtr("21318"), Title: "Tree House", Status: model.InventoryBacklog},
	)
	li := model.LineItem{Title: "LEGO Ideas 21318 Tree House", Quantity: 1}

	got, err := m.Match(context.Background(), NewContext(), &li)
	if err != nil {
		t.Fatal(err)
	}
	if got.Outcome != OutcomeManualRequired || got.Reason != ReasonFuzzySetNumber {
		t.Fatalf("outcome=%s reason=%s", got.Outcome, got.Reason)
	}
}

func TestMatchFuzzyTitle(t *testing.T) {
	m := newTestMatcher(
		model.InventoryItem{ID: 4, Title: "Hogwarts Castle incomplete", Status: model.InventoryBacklog},
	)
	li := model.LineItem{Title: "Harry Potter Hogwarts bundle", Quantity: 1}

	got, err := m.Match(context.Background(), NewContext(), &li)
	if err != nil {
		t.Fatal(err)
	}
	if got.Outcome != OutcomeManualRequired || got.Reason != ReasonFuzzyTitle {
		t.Fatalf("outcome=%s reason=%s", got.Outcome, got.Reason)
	}
	if len(got.Candidates) != 1 {
		t.Fatalf("candidates=%d want=1", len(got.Candidates))
	}
}

func TestMatchUnmatchedReasons(t *testing.T) {
	m := newTestMatcher()
	tests := []struct {
		name string
		li   model.LineItem
		want Reason
	}{
		{"no sku no signal", model.LineItem{Title: "zz", Quantity: 1}, ReasonNoSKU},
		{"sku known nowhere", model.LineItem{SKU: strPtr("GHOST"), Title: "zz", Quantity: 1}, ReasonNoInventory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Match(context.Background(), NewContext(), &tt.li)
			if err != nil {
				t.Fatal(err)
			}
			if got.Outcome != OutcomeUnmatched || got.Reason != tt.want {
				t.Fatalf("outcome=%s reason=%s want=%s", got.Outcome, got.Reason, tt.want)
			}
		})
	}
}

func TestMatchClaimedItemsExcluded(t *testing.T) {
	sku := "LG-75192-N"
	m := newTestMatcher(
		model.InventoryItem{ID: 1, SKU: strPtr(sku), Title: "Falcon", Status: model.InventoryListed},
		model.InventoryItem{ID: 2, SKU: strPtr(sku), Title: "Falcon", Status: model.InventoryBacklog},
	)
	run := NewContext()
	run.Claim(1)
	li := model.LineItem{SKU: strPtr(sku), Title: "LEGO 75192", Quantity: 1}

	// With one of the two already claimed the remaining item is a clean
	// single match.
	got, err := m.Match(context.Background(), run, &li)
	if err != nil {
		t.Fatal(err)
	}
	if got.Outcome != OutcomeMatched || got.InventoryItemID != 2 {
		t.Fatalf("outcome=%s id=%d", got.Outcome, got.InventoryItemID)
	}

	// Both claimed: nothing left, falls through to unmatched.
	got, err = m.Match(context.Background(), run, &li)
	if err != nil {
		t.Fatal(err)
	}
	if got.Outcome != OutcomeUnmatched || got.Reason != ReasonNoInventory {
		t.Fatalf("outcome=%s reason=%s", got.Outcome, got.Reason)
	}
}
