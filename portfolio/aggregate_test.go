package portfolio

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func buy(symbol string, qty, value float64, date string) Transaction {
	return Transaction{
		Symbol: symbol, IsReal: true, Type: TypeBuy,
		Date: day(date), Quantity: qty, Price: value / qty, DollarValue: value,
	}
}

func sell(symbol string, qty float64, date string) Transaction {
	return Transaction{
		Symbol: symbol, IsReal: true, Type: TypeSell,
		Date: day(date), Quantity: qty,
	}
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
	assert.Empty(t, Aggregate([]Transaction{}))
}

func TestAggregateAverageCost(t *testing.T) {
	// Two buys then a partial sell: 20 shares at $2200 total, sell 5 at
	// the $110 average -> 15 shares, $1650 basis.
	txs := []Transaction{
		buy("AAPL", 10, 1000, "2023-01-01"),
		buy("AAPL", 10, 1200, "2023-02-01"),
		sell("AAPL", 5, "2023-03-01"),
	}

	positions := Aggregate(txs)
	require.Len(t, positions, 1)
	assert.Equal(t, "AAPL", positions[0].Symbol)
	assert.InDelta(t, 15, positions[0].Quantity, Epsilon)
	assert.InDelta(t, 1650, positions[0].TotalCost, 1e-9)
	assert.InDelta(t, 110, positions[0].AvgCost(), 1e-9)
}

func TestAggregateOrderIndependence(t *testing.T) {
	txs := []Transaction{
		buy("AAPL", 10, 1000, "2023-01-01"),
		buy("AAPL", 10, 1200, "2023-02-01"),
		sell("AAPL", 5, "2023-03-01"),
		buy("MSFT", 4, 1600, "2023-01-15"),
	}

	want := Aggregate(txs)
	perms := [][]int{
		{3, 2, 1, 0},
		{2, 0, 3, 1},
		{1, 3, 0, 2},
	}
	for _, perm := range perms {
		shuffled := make([]Transaction, len(txs))
		for i, j := range perm {
			shuffled[i] = txs[j]
		}
		assert.Equal(t, want, Aggregate(shuffled))
	}
}

func TestAggregateClosedPositionExcluded(t *testing.T) {
	txs := []Transaction{
		buy("TSLA", 3, 600, "2023-01-01"),
		sell("TSLA", 3, "2023-06-01"),
		buy("AAPL", 1, 150, "2023-01-01"),
	}

	positions := Aggregate(txs)
	require.Len(t, positions, 1)
	assert.Equal(t, "AAPL", positions[0].Symbol)
}

func TestAggregateFractionalResidueExcluded(t *testing.T) {
	// Repeated fractional sells leave floating-point dust below epsilon.
	txs := []Transaction{buy("VTI", 0.3, 60, "2023-01-01")}
	for i := 0; i < 3; i++ {
		txs = append(txs, sell("VTI", 0.1, "2023-02-01"))
	}
	assert.Empty(t, Aggregate(txs))
}

func TestAggregateWatchlistPurity(t *testing.T) {
	txs := []Transaction{
		buy("AAPL", 10, 1000, "2023-01-01"),
		{Symbol: "AAPL", IsReal: false, Type: TypeBuy, Date: day("2023-02-01"), Quantity: 999, DollarValue: 99999},
		{Symbol: "NVDA", IsReal: false, Date: day("2023-02-01")},
	}

	positions := Aggregate(txs)
	require.Len(t, positions, 1)
	assert.InDelta(t, 10, positions[0].Quantity, Epsilon)
	assert.InDelta(t, 1000, positions[0].TotalCost, 1e-9)

	watch := Watchlist(txs)
	require.Len(t, watch, 2)
	assert.Equal(t, "AAPL", watch[0].Symbol)
	assert.Equal(t, "NVDA", watch[1].Symbol)
}

func TestAggregateSellBeforeBuySkipped(t *testing.T) {
	assert.Empty(t, Aggregate([]Transaction{sell("MSFT", 5, "2023-01-01")}))

	// A later buy still opens the position normally.
	positions := Aggregate([]Transaction{
		sell("MSFT", 5, "2023-01-01"),
		buy("MSFT", 2, 800, "2023-02-01"),
	})
	require.Len(t, positions, 1)
	assert.InDelta(t, 2, positions[0].Quantity, Epsilon)
	assert.InDelta(t, 800, positions[0].TotalCost, 1e-9)
}

func TestAggregateOverSellClampsCost(t *testing.T) {
	positions := Aggregate([]Transaction{
		buy("AAPL", 10, 1000, "2023-01-01"),
		sell("AAPL", 15, "2023-02-01"),
	})
	// Fully closed, never emitted, and no negative cost along the way.
	assert.Empty(t, positions)
}

func TestAggregateSellAgainstClosedPositionIsNoOp(t *testing.T) {
	positions := Aggregate([]Transaction{
		buy("AAPL", 10, 1000, "2023-01-01"),
		sell("AAPL", 10, "2023-02-01"),
		sell("AAPL", 5, "2023-03-01"),
		buy("AAPL", 1, 120, "2023-04-01"),
	})
	require.Len(t, positions, 1)
	assert.InDelta(t, 1, positions[0].Quantity, Epsilon)
	assert.InDelta(t, 120, positions[0].TotalCost, 1e-9)
}

func TestAggregateCostNeverNegative(t *testing.T) {
	txs := []Transaction{
		buy("AAPL", 10, 1000, "2023-01-01"),
		sell("AAPL", 4, "2023-02-01"),
		sell("AAPL", 4, "2023-03-01"),
		buy("AAPL", 2, 300, "2023-04-01"),
		sell("AAPL", 3, "2023-05-01"),
	}
	positions := Aggregate(txs)
	require.Len(t, positions, 1)
	assert.GreaterOrEqual(t, positions[0].TotalCost, 0.0)
	assert.Greater(t, positions[0].Quantity, Epsilon)
}

func TestAggregateSkipsMalformedNumericFields(t *testing.T) {
	txs := []Transaction{
		buy("AAPL", 10, 1000, "2023-01-01"),
		{Symbol: "AAPL", IsReal: true, Type: TypeBuy, Date: day("2023-02-01"), Quantity: math.NaN(), DollarValue: 500},
		{Symbol: "AAPL", IsReal: true, Type: TypeBuy, Date: day("2023-02-02"), Quantity: 1, DollarValue: math.Inf(1)},
		{Symbol: "AAPL", IsReal: true, Type: TypeBuy, Date: day("2023-02-03"), Quantity: -2, DollarValue: 100},
		{Symbol: "", IsReal: true, Type: TypeBuy, Date: day("2023-02-04"), Quantity: 1, DollarValue: 100},
		{Symbol: "AAPL", IsReal: true, Type: "transfer", Date: day("2023-02-05"), Quantity: 1, DollarValue: 100},
	}

	positions := Aggregate(txs)
	require.Len(t, positions, 1)
	assert.InDelta(t, 10, positions[0].Quantity, Epsilon)
	assert.InDelta(t, 1000, positions[0].TotalCost, 1e-9)
	assert.False(t, math.IsNaN(positions[0].TotalCost))
}

func TestAggregateSectionLastNonEmptyWins(t *testing.T) {
	txs := []Transaction{
		{Symbol: "AAPL", LongName: "Apple Inc.", Sector: "Technology", CustomSection: "Core", IsReal: true, Type: TypeBuy, Date: day("2023-01-01"), Quantity: 1, DollarValue: 150},
		{Symbol: "AAPL", IsReal: true, Type: TypeBuy, Date: day("2023-02-01"), Quantity: 1, DollarValue: 160},
		{Symbol: "AAPL", CustomSection: "Growth", IsReal: true, Type: TypeBuy, Date: day("2023-03-01"), Quantity: 1, DollarValue: 170},
	}

	positions := Aggregate(txs)
	require.Len(t, positions, 1)
	// The empty middle value does not erase the tag; the latest non-empty wins.
	assert.Equal(t, "Growth", positions[0].CustomSection)
	assert.Equal(t, "Apple Inc.", positions[0].LongName)
	assert.Equal(t, "Technology", positions[0].Sector)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	txs := []Transaction{
		sell("AAPL", 5, "2023-03-01"),
		buy("AAPL", 10, 1000, "2023-01-01"),
	}
	first, second := txs[0], txs[1]
	Aggregate(txs)
	assert.Equal(t, first, txs[0])
	assert.Equal(t, second, txs[1])
}

func TestSectionName(t *testing.T) {
	assert.Equal(t, "Core", Position{CustomSection: "Core", Sector: "Technology"}.SectionName())
	assert.Equal(t, "Technology", Position{Sector: "Technology"}.SectionName())
	assert.Equal(t, "Uncategorized", Position{}.SectionName())
}
