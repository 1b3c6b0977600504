package portfolio

import (
	"log"
	"math"
	"sort"
)

// Aggregate folds an unordered transaction log into the set of open
// positions with average-cost basis. The input is not mutated; a copy is
// stable-sorted by date before folding, so the result is independent of
// input order (same-date transactions keep input order — the log has no
// intra-day sequence field).
//
// Data-integrity anomalies (sell with no prior buy, over-sell, malformed
// numeric fields) are logged and skipped, never fatal: historical data
// imported out of order must not take the dashboard down.
func Aggregate(transactions []Transaction) []Position {
	sorted := make([]Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	open := make(map[string]*Position)
	for _, tx := range sorted {
		if !tx.IsReal {
			continue
		}
		if err := validate(tx); err != nil {
			log.Printf("portfolio: skipping transaction %d (%s): %v", tx.ID, tx.Symbol, err)
			continue
		}

		pos, held := open[tx.Symbol]
		if !held {
			if tx.Type == TypeSell {
				log.Printf("portfolio: sell with no prior buy for %s (transaction %d), skipped", tx.Symbol, tx.ID)
				continue
			}
			pos = &Position{Symbol: tx.Symbol}
			open[tx.Symbol] = pos
		}

		switch tx.Type {
		case TypeBuy:
			pos.Quantity += tx.Quantity
			pos.TotalCost += tx.DollarValue
		case TypeSell:
			if pos.Quantity <= Epsilon {
				log.Printf("portfolio: sell of %s against closed position (transaction %d), cost untouched", tx.Symbol, tx.ID)
				continue
			}
			if tx.Quantity > pos.Quantity+Epsilon {
				log.Printf("portfolio: over-sell of %s: %.4f sold, %.4f held (transaction %d)", tx.Symbol, tx.Quantity, pos.Quantity, tx.ID)
			}
			// Reduce cost proportionally at the current average cost,
			// capped at the shares actually held.
			avg := pos.TotalCost / pos.Quantity
			sold := math.Min(tx.Quantity, pos.Quantity)
			pos.TotalCost -= avg * sold
			if pos.TotalCost < 0 {
				pos.TotalCost = 0
			}
			pos.Quantity -= tx.Quantity
		}

		if tx.LongName != "" {
			pos.LongName = tx.LongName
		}
		if tx.Sector != "" {
			pos.Sector = tx.Sector
		}
		if tx.CustomSection != "" {
			pos.CustomSection = tx.CustomSection
		}
	}

	positions := make([]Position, 0, len(open))
	for _, pos := range open {
		if pos.Quantity > Epsilon {
			positions = append(positions, *pos)
		}
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Symbol < positions[j].Symbol
	})
	return positions
}

// Watchlist returns the distinct symbols of non-real transactions, in
// first-seen order. Watchlist rows never touch position math.
func Watchlist(transactions []Transaction) []Transaction {
	seen := make(map[string]bool)
	var entries []Transaction
	for _, tx := range transactions {
		if tx.IsReal || tx.Symbol == "" || seen[tx.Symbol] {
			continue
		}
		seen[tx.Symbol] = true
		entries = append(entries, tx)
	}
	return entries
}

type validationError string

func (e validationError) Error() string { return string(e) }

func validate(tx Transaction) error {
	if tx.Symbol == "" {
		return validationError("empty symbol")
	}
	if tx.Type != TypeBuy && tx.Type != TypeSell {
		return validationError("unknown transaction type " + tx.Type)
	}
	for _, v := range []float64{tx.Quantity, tx.Price, tx.DollarValue} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return validationError("non-finite numeric field")
		}
		if v < 0 {
			return validationError("negative numeric field")
		}
	}
	return nil
}
