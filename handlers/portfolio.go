package handlers

import (
	"net/http"
	"strings"
	"time"

	"club-tracker/config"
	"club-tracker/models"
	"club-tracker/portfolio"

	"github.com/gin-gonic/gin"
)

type TransactionInput struct {
	Symbol        string  `json:"symbol" binding:"required"`
	LongName      string  `json:"longName"`
	Sector        string  `json:"sector"`
	CustomSection string  `json:"customSection"`
	Type          string  `json:"transactionType" binding:"required,oneof=buy sell"`
	Date          string  `json:"date"`
	Quantity      float64 `json:"quantity" binding:"required,gt=0"`
	Price         float64 `json:"price" binding:"required,gt=0"`
	DollarValue   float64 `json:"dollarValue" binding:"omitempty,gte=0"`
}

func parseDate(raw string) time.Time {
	if raw == "" {
		return time.Now()
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Now()
}

// AddTransaction records a real buy or sell against the member's log.
func AddTransaction(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	var input TransactionInput

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sector := input.Sector
	if sector == "" {
		sector = "Other"
	}
	dollarValue := input.DollarValue
	if dollarValue == 0 {
		dollarValue = input.Quantity * input.Price
	}

	transaction := models.Transaction{
		UserID:        userID,
		Symbol:        strings.ToUpper(strings.TrimSpace(input.Symbol)),
		LongName:      input.LongName,
		Sector:        sector,
		CustomSection: input.CustomSection,
		IsReal:        true,
		Type:          input.Type,
		Date:          parseDate(input.Date),
		Quantity:      input.Quantity,
		Price:         input.Price,
		DollarValue:   dollarValue,
	}

	if err := config.DB.Create(&transaction).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record transaction"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Transaction recorded successfully", "id": transaction.ID})
}

// GetTransactions returns the member's full transaction snapshot, the
// authoritative input to client-side aggregation.
func GetTransactions(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var transactions []models.Transaction
	if err := config.DB.Where("user_id = ?", userID).Order("date asc").Find(&transactions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
		return
	}

	c.JSON(http.StatusOK, transactions)
}

func DeleteTransaction(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	transactionID := c.Param("id")

	// Verify ownership
	var transaction models.Transaction
	if err := config.DB.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}

	if err := config.DB.Delete(&transaction).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// toEngineTransactions maps persisted rows onto the aggregation engine's
// value type, dropping the ORM baggage.
func toEngineTransactions(rows []models.Transaction) []portfolio.Transaction {
	txs := make([]portfolio.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, portfolio.Transaction{
			ID:            row.ID,
			Symbol:        row.Symbol,
			LongName:      row.LongName,
			Sector:        row.Sector,
			CustomSection: row.CustomSection,
			IsReal:        row.IsReal,
			Type:          row.Type,
			Date:          row.Date,
			Quantity:      row.Quantity,
			Price:         row.Price,
			DollarValue:   row.DollarValue,
		})
	}
	return txs
}

// GetPositions aggregates the member's transaction log into open
// positions, values them against live quotes and returns the grouped
// summary alongside the watchlist.
func GetPositions(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var rows []models.Transaction
	if err := config.DB.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
		return
	}

	txs := toEngineTransactions(rows)
	positions := portfolio.Aggregate(txs)
	watchlist := portfolio.Watchlist(txs)

	symbols := make([]string, 0, len(positions)+len(watchlist))
	for _, pos := range positions {
		symbols = append(symbols, pos.Symbol)
	}
	for _, entry := range watchlist {
		symbols = append(symbols, entry.Symbol)
	}

	quotes := fetchQuotes(c.Request.Context(), symbols)
	summary := portfolio.GroupSections(portfolio.Valuate(positions, quotes))

	watched := make([]gin.H, 0, len(watchlist))
	for _, entry := range watchlist {
		item := gin.H{
			"id":       entry.ID,
			"symbol":   entry.Symbol,
			"longName": entry.LongName,
			"sector":   entry.Sector,
		}
		if quote, ok := quotes[entry.Symbol]; ok {
			item["currentPrice"] = quote.CurrentPrice
			item["previousClose"] = quote.PreviousClose
		}
		watched = append(watched, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":   summary,
		"watchlist": watched,
	})
}

type SectionInput struct {
	Symbol  string `json:"symbol" binding:"required"`
	Section string `json:"section"`
}

// ReassignSection persists a display-section override for a symbol across
// all of the member's transactions. An empty section clears the override
// so the holding falls back to its sector bucket.
func ReassignSection(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	var input SectionInput

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(input.Symbol))
	result := config.DB.Model(&models.Transaction{}).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Update("custom_section", input.Section)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update section"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Symbol not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Section updated successfully", "symbol": symbol, "section": input.Section})
}

type WatchlistInput struct {
	Symbol   string `json:"symbol" binding:"required"`
	LongName string `json:"longName"`
	Sector   string `json:"sector"`
}

// AddWatchlistEntry tracks a symbol without affecting position math.
func AddWatchlistEntry(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	var input WatchlistInput

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(input.Symbol))

	var existing models.Transaction
	err := config.DB.Where("user_id = ? AND symbol = ? AND is_real = ?", userID, symbol, false).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Symbol already on watchlist"})
		return
	}

	entry := models.Transaction{
		UserID:   userID,
		Symbol:   symbol,
		LongName: input.LongName,
		Sector:   input.Sector,
		IsReal:   false,
		Date:     time.Now(),
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add watchlist entry"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Symbol added to watchlist", "id": entry.ID})
}

// GetWatchlist lists watched symbols with their latest quotes.
func GetWatchlist(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var rows []models.Transaction
	if err := config.DB.Where("user_id = ? AND is_real = ?", userID, false).Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch watchlist"})
		return
	}

	entries := portfolio.Watchlist(toEngineTransactions(rows))
	symbols := make([]string, 0, len(entries))
	for _, entry := range entries {
		symbols = append(symbols, entry.Symbol)
	}
	quotes := fetchQuotes(c.Request.Context(), symbols)

	out := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		item := gin.H{
			"id":       entry.ID,
			"symbol":   entry.Symbol,
			"longName": entry.LongName,
			"sector":   entry.Sector,
		}
		if quote, ok := quotes[entry.Symbol]; ok {
			item["currentPrice"] = quote.CurrentPrice
			item["previousClose"] = quote.PreviousClose
		}
		out = append(out, item)
	}

	c.JSON(http.StatusOK, out)
}
