package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction is the persisted transaction log entry. Real buy/sell rows
// carry quantity/price/dollar value; watchlist rows (IsReal=false) only
// track a symbol and never enter cost-basis math.
type Transaction struct {
	gorm.Model
	UserID        uint      `gorm:"index" json:"-"`
	Symbol        string    `gorm:"index" json:"symbol"`
	LongName      string    `json:"longName"`
	Sector        string    `json:"sector"`
	CustomSection string    `json:"customSection"`
	IsReal        bool      `json:"isReal"`
	Type          string    `json:"transactionType"` // buy/sell
	Date          time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"date"`
	Quantity      float64   `json:"quantity"`
	Price         float64   `json:"price"`
	DollarValue   float64   `json:"dollarValue"`
}

type StockPrice struct {
	gorm.Model
	Symbol        string `gorm:"index"`
	Price         float64
	PreviousClose float64
	Timestamp     time.Time
}
