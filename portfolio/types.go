// Package portfolio turns a flat transaction log into open positions with
// average-cost basis, and values them against live quotes. It is pure and
// reentrant: no database, no HTTP, no shared state.
package portfolio

import "time"

// Epsilon is the open-quantity threshold below which a position counts as
// fully closed. Guards against floating-point residue from repeated sells.
const Epsilon = 0.00001

const (
	TypeBuy  = "buy"
	TypeSell = "sell"
)

// Transaction is one record of the transaction log. IsReal=false marks a
// watchlist entry that never contributes to position math.
type Transaction struct {
	ID            uint      `json:"id"`
	Symbol        string    `json:"symbol"`
	LongName      string    `json:"longName"`
	Sector        string    `json:"sector"`
	CustomSection string    `json:"customSection"`
	IsReal        bool      `json:"isReal"`
	Type          string    `json:"transactionType"`
	Date          time.Time `json:"date"`
	Quantity      float64   `json:"quantity"`
	Price         float64   `json:"price"`
	DollarValue   float64   `json:"dollarValue"`
}

// Position is a currently-open holding derived from the transaction log.
// TotalCost is the dollar cost of the shares still held, not lifetime spend.
type Position struct {
	Symbol        string  `json:"symbol"`
	LongName      string  `json:"longName"`
	Sector        string  `json:"sector"`
	CustomSection string  `json:"customSection"`
	Quantity      float64 `json:"quantity"`
	TotalCost     float64 `json:"totalCost"`
}

// AvgCost returns the implied average cost per share.
func (p Position) AvgCost() float64 {
	if p.Quantity <= Epsilon {
		return 0
	}
	return p.TotalCost / p.Quantity
}

// SectionName returns the display grouping bucket for the position.
func (p Position) SectionName() string {
	if p.CustomSection != "" {
		return p.CustomSection
	}
	if p.Sector != "" {
		return p.Sector
	}
	return "Uncategorized"
}

// Quote is a live price pair for one symbol.
type Quote struct {
	CurrentPrice  float64 `json:"currentPrice"`
	PreviousClose float64 `json:"previousClose"`
}

// Quotes maps symbol to its latest quote. Symbols without a quote are
// simply absent; the valuation layer falls back to average cost.
type Quotes map[string]Quote

// Holding is a valued position.
type Holding struct {
	Position
	CurrentPrice    float64 `json:"currentPrice"`
	HasQuote        bool    `json:"hasQuote"`
	CurrentValue    float64 `json:"currentValue"`
	GainLoss        float64 `json:"gainLoss"`
	GainLossPercent float64 `json:"gainLossPercent"`
	DayChange       float64 `json:"dayChange"`
	Weight          float64 `json:"weight"` // share of its section's value
}

// Section is a display grouping of holdings.
type Section struct {
	Name            string    `json:"name"`
	Holdings        []Holding `json:"holdings"`
	TotalCost       float64   `json:"totalCost"`
	CurrentValue    float64   `json:"currentValue"`
	GainLoss        float64   `json:"gainLoss"`
	GainLossPercent float64   `json:"gainLossPercent"`
	Weight          float64   `json:"weight"` // share of total portfolio value
}

// Summary is the full valued portfolio.
type Summary struct {
	Sections        []Section `json:"sections"`
	TotalCost       float64   `json:"totalCost"`
	CurrentValue    float64   `json:"currentValue"`
	GainLoss        float64   `json:"gainLoss"`
	GainLossPercent float64   `json:"gainLossPercent"`
}
