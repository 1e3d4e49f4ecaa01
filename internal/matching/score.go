package matching

import (
	"math"
	"regexp"
	"sort"
	"time"

	"github.com/brickops/backend/internal/model"
)

// Score weights, tunable without touching control flow. The ceiling is
// 100: 30+20+15+10+15+10.
const (
	scoreSKUExact       = 30
	scoreStatusListed   = 20
	scoreStatusBacklog  = 10
	scoreConditionMatch = 15
	scoreHasLocation    = 10
	scorePriceWithin10  = 15
	scorePriceWithin25  = 10
	scorePriceWithin50  = 5
	scoreFIFOCap        = 10

	// One FIFO point per 18 days in stock; the cap lands around 180 days.
	fifoDaysPerPoint = 18
)

var (
	newTokenPattern  = regexp.MustCompile(`(?i)\bnew\b`)
	usedTokenPattern = regexp.MustCompile(`(?i)\bused\b`)
)

// titleCondition reads the condition token out of a line-item title.
// "Used" wins when both appear ("used, like new").
func titleCondition(title string) model.Condition {
	if usedTokenPattern.MatchString(title) {
		return model.ConditionUsed
	}
	if newTokenPattern.MatchString(title) {
		return model.ConditionNew
	}
	return ""
}

func scoreCandidate(item *model.InventoryItem, li *model.LineItem, now time.Time) int {
	score := 0

	if li.SKU != nil && item.SKU != nil && *li.SKU != "" && *li.SKU == *item.SKU {
		score += scoreSKUExact
	}

	switch item.Status {
	case model.InventoryListed:
		score += scoreStatusListed
	case model.InventoryBacklog:
		score += scoreStatusBacklog
	}

	if cond := titleCondition(li.Title); cond != "" && cond == item.Condition {
		score += scoreConditionMatch
	}

	if item.StorageLocation != "" {
		score += scoreHasLocation
	}

	if li.TotalAmount > 0 && item.ListingValue > 0 {
		diff := math.Abs(item.ListingValue-li.TotalAmount) / li.TotalAmount
		switch {
		case diff <= 0.10:
			score += scorePriceWithin10
		case diff <= 0.25:
			score += scorePriceWithin25
		case diff <= 0.50:
			score += scorePriceWithin50
		}
	}

	if item.PurchaseDate != nil {
		days := int(now.Sub(*item.PurchaseDate).Hours() / 24)
		if days > 0 {
			bonus := days / fifoDaysPerPoint
			if bonus > scoreFIFOCap {
				bonus = scoreFIFOCap
			}
			score += bonus
		}
	}

	return score
}

// Rank deduplicates by inventory id, scores each candidate against the
// line item, and sorts best-first. Ties go to the older purchase date so
// stock rotates FIFO.
func Rank(items []model.InventoryItem, li *model.LineItem, now time.Time) []Candidate {
	seen := make(map[uint64]bool, len(items))
	out := make([]Candidate, 0, len(items))
	for i := range items {
		item := &items[i]
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		out = append(out, Candidate{
			InventoryItemID: item.ID,
			Title:           item.Title,
			SKU:             item.SKU,
			SetNumber:       item.SetNumber,
			Status:          string(item.Status),
			Condition:       string(item.Condition),
			StorageLocation: item.StorageLocation,
			ListingValue:    item.ListingValue,
			PurchaseDate:    item.PurchaseDate,
			Score:           scoreCandidate(item, li, now),
		})
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		pa, pb := out[a].PurchaseDate, out[b].PurchaseDate
		switch {
		case pa != nil && pb != nil:
			return pa.Before(*pb)
		case pa != nil:
			return true
		default:
			return false
		}
	})
	return out
}
