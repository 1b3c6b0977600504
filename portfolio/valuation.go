package portfolio

import "sort"

// Valuate prices each position against the supplied quotes. A position
// without a usable quote is priced at its implied average cost, which
// reports a zero gain until a real quote arrives — the dashboard never
// shows a NaN or null price.
func Valuate(positions []Position, quotes Quotes) []Holding {
	holdings := make([]Holding, 0, len(positions))
	for _, pos := range positions {
		h := Holding{Position: pos}
		if q, ok := quotes[pos.Symbol]; ok && q.CurrentPrice > 0 {
			h.CurrentPrice = q.CurrentPrice
			h.HasQuote = true
			if q.PreviousClose > 0 {
				h.DayChange = (q.CurrentPrice - q.PreviousClose) * pos.Quantity
			}
		} else {
			h.CurrentPrice = pos.AvgCost()
		}
		h.CurrentValue = pos.Quantity * h.CurrentPrice
		h.GainLoss = h.CurrentValue - pos.TotalCost
		if pos.TotalCost > 0 {
			h.GainLossPercent = h.GainLoss / pos.TotalCost * 100
		}
		holdings = append(holdings, h)
	}
	return holdings
}

// GroupSections buckets holdings by custom section, falling back to sector
// and then "Uncategorized", and computes section and portfolio totals.
// Sections and the holdings within them are ordered by current value,
// largest first. All weight divisions are guarded against zero totals.
func GroupSections(holdings []Holding) Summary {
	buckets := make(map[string]*Section)
	var names []string
	var summary Summary

	for _, h := range holdings {
		name := h.SectionName()
		sec, ok := buckets[name]
		if !ok {
			sec = &Section{Name: name}
			buckets[name] = sec
			names = append(names, name)
		}
		sec.Holdings = append(sec.Holdings, h)
		sec.TotalCost += h.TotalCost
		sec.CurrentValue += h.CurrentValue
		sec.GainLoss += h.GainLoss
		summary.TotalCost += h.TotalCost
		summary.CurrentValue += h.CurrentValue
		summary.GainLoss += h.GainLoss
	}

	for _, name := range names {
		sec := buckets[name]
		if sec.TotalCost > 0 {
			sec.GainLossPercent = sec.GainLoss / sec.TotalCost * 100
		}
		if summary.CurrentValue > 0 {
			sec.Weight = sec.CurrentValue / summary.CurrentValue
		}
		for i := range sec.Holdings {
			if sec.CurrentValue > 0 {
				sec.Holdings[i].Weight = sec.Holdings[i].CurrentValue / sec.CurrentValue
			}
		}
		sort.SliceStable(sec.Holdings, func(i, j int) bool {
			return sec.Holdings[i].CurrentValue > sec.Holdings[j].CurrentValue
		})
		summary.Sections = append(summary.Sections, *sec)
	}

	sort.SliceStable(summary.Sections, func(i, j int) bool {
		return summary.Sections[i].CurrentValue > summary.Sections[j].CurrentValue
	})
	if summary.TotalCost > 0 {
		summary.GainLossPercent = summary.GainLoss / summary.TotalCost * 100
	}
	if summary.Sections == nil {
		summary.Sections = []Section{}
	}
	return summary
}
