package matching

import (
	"context"
	"time"

	"github.com/brickops/backend/internal/model"
)

// CandidateSource supplies eligible inventory for one user. Eligibility
// (owner, lifecycle statuses, historical-backfill widening) is fixed by
// whoever constructs the source, so the engine itself stays pure.
type CandidateSource interface {
	BySKU(ctx context.Context, sku string) ([]model.InventoryItem, error)
	BySetNumber(ctx context.Context, setNumber string) ([]model.InventoryItem, error)
	ByTitleKeywords(ctx context.Context, keywords []string) ([]model.InventoryItem, error)
}

// Context carries run-scoped matching state: the set of inventory ids
// already claimed in this batch. One Context spans one sync run or one
// historical backfill, never longer.
type Context struct {
	claimed map[uint64]bool
}

func NewContext() *Context {
	return &Context{claimed: make(map[uint64]bool)}
}

func (c *Context) Claim(id uint64) {
	c.claimed[id] = true
}

func (c *Context) Claimed(id uint64) bool {
	return c.claimed[id]
}

func (c *Context) filter(items []model.InventoryItem) []model.InventoryItem {
	out := items[:0]
	for _, item := range items {
		if !c.claimed[item.ID] {
			out = append(out, item)
		}
	}
	return out
}

type Matcher struct {
	source CandidateSource
	now    func() time.Time
}

func NewMatcher(source CandidateSource) *Matcher {
	return &Matcher{source: source, now: time.Now}
}

// Match runs the decision sequence for one line item. First applicable
// rule wins:
//  1. quantity > 1 always needs an operator (units may differ in cost
//     and location), candidates attached best-effort;
//  2. no SKU: set-number extraction from the title, then keyword search;
//  3. SKU present: exact SKU lookup, falling through to the no-SKU path
//     when the SKU is unknown to inventory.
//
// A Matched result claims the inventory id in run. ManualRequired always
// carries at least one candidate except under the multi-quantity guard;
// no-candidate outcomes are Unmatched.
func (m *Matcher) Match(ctx context.Context, run *Context, li *model.LineItem) (Result, error) {
	if li.Quantity > 1 {
		candidates, err := m.gatherAll(ctx, run, li)
		if err != nil {
			return Result{}, err
		}
		return Result{
			Outcome:    OutcomeManualRequired,
			Reason:     ReasonMultiQuantity,
			Candidates: Rank(candidates, li, m.now()),
		}, nil
	}

	if li.SKU == nil || *li.SKU == "" {
		return m.matchWithoutSKU(ctx, run, li)
	}

	items, err := m.source.BySKU(ctx, *li.SKU)
	if err != nil {
		return Result{}, err
	}
	items = run.filter(items)
	switch len(items) {
	case 0:
		// SKU unknown to inventory; the title may still identify it.
		return m.matchWithoutSKU(ctx, run, li)
	case 1:
		run.Claim(items[0].ID)
		return Result{
			Outcome:         OutcomeMatched,
			InventoryItemID: items[0].ID,
			Method:          MethodAutoSKU,
			Confidence:      1.0,
		}, nil
	default:
		return Result{
			Outcome:    OutcomeManualRequired,
			Reason:     ReasonMultipleSKUMatches,
			Candidates: Rank(items, li, m.now()),
		}, nil
	}
}

func (m *Matcher) matchWithoutSKU(ctx context.Context, run *Context, li *model.LineItem) (Result, error) {
	if setNumber := ExtractSetNumber(li.Title); setNumber != "" {
		items, err := m.source.BySetNumber(ctx, setNumber)
		if err != nil {
			return Result{}, err
		}
		items = run.filter(items)
		switch len(items) {
		case 1:
			run.Claim(items[0].ID)
			return Result{
				Outcome:         OutcomeMatched,
				InventoryItemID: items[0].ID,
				Method:          MethodAutoSetNumber,
				Confidence:      0.9,
			}, nil
		default:
			if len(items) > 1 {
				return Result{
					Outcome:    OutcomeManualRequired,
					Reason:     ReasonFuzzySetNumber,
					Candidates: Rank(items, li, m.now()),
				}, nil
			}
			// No inventory for that number; keyword search below.
		}
	}

	keywords := TitleKeywords(li.Title)
	if len(keywords) > 0 {
		items, err := m.source.ByTitleKeywords(ctx, keywords)
		if err != nil {
			return Result{}, err
		}
		items = run.filter(items)
		if len(items) > 0 {
			return Result{
				Outcome:    OutcomeManualRequired,
				Reason:     ReasonFuzzyTitle,
				Candidates: Rank(items, li, m.now()),
			}, nil
		}
	}

	reason := ReasonNoSKU
	if li.SKU != nil && *li.SKU != "" {
		reason = ReasonNoInventory
	}
	return Result{Outcome: OutcomeUnmatched, Reason: reason}, nil
}

// gatherAll collects every signal's candidates for the multi-quantity
// case so the operator sees the full field.
func (m *Matcher) gatherAll(ctx context.Context, run *Context, li *model.LineItem) ([]model.InventoryItem, error) {
	var all []model.InventoryItem
	if li.SKU != nil && *li.SKU != "" {
		items, err := m.source.BySKU(ctx, *li.SKU)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	if setNumber := ExtractSetNumber(li.Title); setNumber != "" {
		items, err := m.source.BySetNumber(ctx, setNumber)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	if len(all) == 0 {
		if keywords := TitleKeywords(li.Title); len(keywords) > 0 {
			items, err := m.source.ByTitleKeywords(ctx, keywords)
			if err != nil {
				return nil, err
			}
			all = append(all, items...)
		}
	}
	return run.filter(all), nil
}
