package discount

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-pricing/internal/pricing"
)

// unitPools counts cart units by role. A unit whose product is in both the
// buy and get sets is an overlap unit: it can pay for an offer or be gifted,
// never both.
type unitPools struct {
	buyOnly int
	getOnly int
	overlap int
}

type giftCandidate struct {
	line    pricing.CartLine
	overlap bool
}

func matchesAny(set map[int64]struct{}, id int64) bool {
	if len(set) == 0 {
		return true
	}
	_, ok := set[id]
	return ok
}

func evaluateBuyXGetY(app Application, rule BuyXGetYRule) Result {
	x, y := rule.BuyQuantity, rule.GetQuantity
	if x < 1 {
		x = 1
	}
	if y < 1 {
		return notEligible(MessageNoEffect)
	}
	buySet, getSet := idSet(rule.BuyProductIDs), idSet(rule.GetProductIDs)

	var pools unitPools
	var candidates []giftCandidate
	for _, line := range app.Lines {
		inBuy := matchesAny(buySet, line.ProductID)
		inGet := matchesAny(getSet, line.ProductID)
		switch {
		case inBuy && inGet:
			pools.overlap += line.Quantity
		case inBuy:
			pools.buyOnly += line.Quantity
		case inGet:
			pools.getOnly += line.Quantity
		}
		if inGet {
			candidates = append(candidates, giftCandidate{line: line, overlap: inBuy})
		}
	}

	times, gifts := bestApplications(pools, x, y, rule.Repeat)
	if gifts == 0 {
		return notEligible(MessageNoEligibleLines)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].line, candidates[j].line
		if !a.UnitPrice.Equal(b.UnitPrice) {
			return a.UnitPrice.LessThan(b.UnitPrice)
		}
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		return a.Variant() < b.Variant()
	})

	// Overlap units not needed to pay for the offers may be gifted.
	overlapBudget := pools.overlap - maxInt(0, times*x-pools.buyOnly)
	remaining := gifts
	adjustments := map[string]LineAdjustment{}
	total := decimal.Zero
	for _, c := range candidates {
		if remaining == 0 {
			break
		}
		take := minInt(c.line.Quantity, remaining)
		if c.overlap {
			take = minInt(take, overlapBudget)
			overlapBudget -= take
		}
		if take <= 0 {
			continue
		}
		remaining -= take
		amount := c.line.UnitPrice.Mul(decimal.NewFromInt(int64(take))).Round(2)
		key := c.line.Key()
		adj := adjustments[key]
		adj.ProductID = c.line.ProductID
		adj.VariantID = c.line.Variant()
		adj.DiscountAmount = adj.DiscountAmount.Add(amount)
		adj.IsGift = true
		adjustments[key] = adj
		total = total.Add(amount)
	}

	return Result{
		OK:                    true,
		ProductDiscountAmount: total,
		LineAdjustments:       adjustments,
	}.withTotal()
}

// giftsFor is the number of gift units t applications of the offer yield.
func giftsFor(p unitPools, x, y, t int) int {
	available := p.getOnly + p.overlap - maxInt(0, t*x-p.buyOnly)
	return maxInt(0, minInt(t*y, available))
}

// bestApplications picks how many times the offer applies. giftsFor rises and
// then falls in t, so the maximum lies at one of the breakpoints below. Ties
// go to the smallest t.
func bestApplications(p unitPools, x, y int, repeat bool) (int, int) {
	tMax := (p.buyOnly + p.overlap) / x
	if !repeat && tMax > 1 {
		tMax = 1
	}
	if tMax < 1 {
		return 0, 0
	}
	gettable := p.getOnly + p.overlap
	candidates := []int{
		1,
		tMax,
		p.buyOnly / x,
		(gettable + y - 1) / y,
		(gettable + p.buyOnly) / (x + y),
		(gettable+p.buyOnly)/(x+y) + 1,
	}
	bestT, bestGifts := 0, 0
	for _, t := range candidates {
		t = minInt(maxInt(t, 1), tMax)
		g := giftsFor(p, x, y, t)
		if g > bestGifts || (g == bestGifts && g > 0 && t < bestT) {
			bestT, bestGifts = t, g
		}
	}
	return bestT, bestGifts
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
