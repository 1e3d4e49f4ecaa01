// Package matching links sold line items to physical inventory records.
// It is a pure engine: all inventory access goes through CandidateSource
// and all run state lives in an explicit Context, so call order carries
// no hidden dependencies.
package matching

import "time"

type Outcome string

const (
	OutcomeMatched        Outcome = "matched"
	OutcomeManualRequired Outcome = "manual_required"
	OutcomeUnmatched      Outcome = "unmatched"
)

type Method string

const (
	MethodAutoSKU       Method = "auto_sku"
	MethodAutoSetNumber Method = "auto_set_number"
	MethodManual        Method = "manual"
)

type Reason string

const (
	ReasonMultiQuantity      Reason = "multi_quantity"
	ReasonMultipleSKUMatches Reason = "multiple_sku_matches"
	ReasonFuzzySetNumber     Reason = "fuzzy_set_number"
	ReasonFuzzyTitle         Reason = "fuzzy_title"
	ReasonNoSKU              Reason = "no_sku"
	ReasonNoInventory        Reason = "no_inventory"
)

// Candidate is one ranked inventory option, carrying enough detail for
// an operator to pick without a second lookup.
type Candidate struct {
	InventoryItemID uint64     `json:"inventoryItemId"`
	Title           string     `json:"title"`
	SKU             *string    `json:"sku,omitempty"`
	SetNumber       *string    `json:"setNumber,omitempty"`
	Status          string     `json:"status"`
	Condition       string     `json:"condition"`
	StorageLocation string     `json:"storageLocation,omitempty"`
	ListingValue    float64    `json:"listingValue"`
	PurchaseDate    *time.Time `json:"purchaseDate,omitempty"`
	Score           int        `json:"score"`
}

// Result is the tagged outcome of matching one line item. Matched carries
// the inventory id, method and confidence; ManualRequired carries at
// least one ranked candidate (except the multi-quantity guard, which may
// have none); Unmatched carries only the reason.
type Result struct {
	Outcome         Outcome
	InventoryItemID uint64
	Method          Method
	Confidence      float64
	Reason          Reason
	Candidates      []Candidate
}
