package handlers

import (
	"testing"
	"time"

	"club-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestToEngineTransactions(t *testing.T) {
	date := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.Transaction{
		{
			Model:         gorm.Model{ID: 7},
			UserID:        1,
			Symbol:        "AAPL",
			LongName:      "Apple Inc.",
			Sector:        "Technology",
			CustomSection: "Core",
			IsReal:        true,
			Type:          "buy",
			Date:          date,
			Quantity:      10,
			Price:         100,
			DollarValue:   1000,
		},
		{Model: gorm.Model{ID: 8}, UserID: 1, Symbol: "NVDA", IsReal: false, Date: date},
	}

	txs := toEngineTransactions(rows)
	require.Len(t, txs, 2)

	assert.Equal(t, uint(7), txs[0].ID)
	assert.Equal(t, "AAPL", txs[0].Symbol)
	assert.Equal(t, "Apple Inc.", txs[0].LongName)
	assert.Equal(t, "Core", txs[0].CustomSection)
	assert.True(t, txs[0].IsReal)
	assert.Equal(t, date, txs[0].Date)
	assert.InDelta(t, 1000, txs[0].DollarValue, 1e-9)

	assert.False(t, txs[1].IsReal)
}

func TestParseDate(t *testing.T) {
	parsed := parseDate("2023-03-01")
	assert.Equal(t, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), parsed)

	parsed = parseDate("2023-03-01T15:04:05Z")
	assert.Equal(t, time.Date(2023, 3, 1, 15, 4, 5, 0, time.UTC), parsed)

	// Unparseable and empty dates fall back to now.
	assert.WithinDuration(t, time.Now(), parseDate(""), time.Second)
	assert.WithinDuration(t, time.Now(), parseDate("yesterday"), time.Second)
}
