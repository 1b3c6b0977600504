package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"club-tracker/config"
	"club-tracker/database"
	"club-tracker/models"
	"club-tracker/portfolio"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	quoteExpiration    = 5 * time.Minute
	overviewExpiration = 24 * time.Hour
	historyExpiration  = 24 * time.Hour
)

// Alpha Vantage's free tier allows 5 requests per minute.
var avLimiter = rate.NewLimiter(rate.Every(12*time.Second), 5)

var httpClient = &http.Client{Timeout: 10 * time.Second}

type AlphaVantageResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		High          string `json:"03. high"`
		Low           string `json:"04. low"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		PreviousClose string `json:"08. previous close"`
	} `json:"Global Quote"`
	TimeSeriesDaily map[string]struct {
		Open   string `json:"1. open"`
		High   string `json:"2. high"`
		Low    string `json:"3. low"`
		Close  string `json:"4. close"`
		Volume string `json:"5. volume"`
	} `json:"Time Series (Daily)"`
	Note        string `json:"Note"`
	Information string `json:"Information"`
}

type CompanyOverview struct {
	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	Sector               string `json:"Sector"`
	MarketCapitalization string `json:"MarketCapitalization"`
}

func avFetch(ctx context.Context, function, symbol string, out interface{}) error {
	if err := avLimiter.Wait(ctx); err != nil {
		return err
	}

	apiKey := os.Getenv("ALPHA_VANTAGE_API_KEY")
	url := fmt.Sprintf("https://www.alphavantage.co/query?function=%s&symbol=%s&apikey=%s", function, symbol, apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("alpha vantage returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// quoteFromResponse extracts a validated quote from a GLOBAL_QUOTE payload.
func quoteFromResponse(r AlphaVantageResponse) (portfolio.Quote, error) {
	if r.Note != "" || r.Information != "" {
		return portfolio.Quote{}, fmt.Errorf("alpha vantage rate limited")
	}
	if r.GlobalQuote.Price == "" {
		return portfolio.Quote{}, fmt.Errorf("quote not found")
	}

	price, err := strconv.ParseFloat(r.GlobalQuote.Price, 64)
	if err != nil || price <= 0 {
		return portfolio.Quote{}, fmt.Errorf("invalid quote price %q", r.GlobalQuote.Price)
	}

	quote := portfolio.Quote{CurrentPrice: price}
	if prev, err := strconv.ParseFloat(r.GlobalQuote.PreviousClose, 64); err == nil && prev > 0 {
		quote.PreviousClose = prev
	}
	return quote, nil
}

// fetchQuote resolves a quote cache-first: Redis, then Alpha Vantage.
// Fresh quotes are cached and a snapshot row is persisted for the
// portfolio join used elsewhere.
func fetchQuote(ctx context.Context, symbol string) (portfolio.Quote, error) {
	key := fmt.Sprintf("stock:%s:quote", symbol)

	if cached, err := config.Rdb.Get(ctx, key).Result(); err == nil {
		var quote portfolio.Quote
		if err := json.Unmarshal([]byte(cached), &quote); err == nil && quote.CurrentPrice > 0 {
			return quote, nil
		}
	}

	var result AlphaVantageResponse
	if err := avFetch(ctx, "GLOBAL_QUOTE", symbol, &result); err != nil {
		return portfolio.Quote{}, err
	}

	quote, err := quoteFromResponse(result)
	if err != nil {
		return portfolio.Quote{}, err
	}

	if data, err := json.Marshal(quote); err == nil {
		config.Rdb.Set(ctx, key, data, quoteExpiration)
	}
	config.DB.Create(&models.StockPrice{
		Symbol:        symbol,
		Price:         quote.CurrentPrice,
		PreviousClose: quote.PreviousClose,
		Timestamp:     time.Now(),
	})

	return quote, nil
}

// fetchQuotes resolves quotes for a symbol list. Symbols that fail to
// resolve are absent from the map; the valuation layer falls back to
// average cost for those.
func fetchQuotes(ctx context.Context, symbols []string) portfolio.Quotes {
	quotes := make(portfolio.Quotes, len(symbols))
	for _, symbol := range symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" {
			continue
		}
		if _, ok := quotes[symbol]; ok {
			continue
		}
		quote, err := fetchQuote(ctx, symbol)
		if err != nil {
			continue
		}
		quotes[symbol] = quote
	}
	return quotes
}

func GetStockPrice(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	quote, err := fetchQuote(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stock not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":        symbol,
		"currentPrice":  quote.CurrentPrice,
		"previousClose": quote.PreviousClose,
	})
}

type QuotesInput struct {
	Symbols []string `json:"symbols" binding:"required"`
}

// GetQuotes is the batch quote endpoint the dashboard polls with its
// aggregated position symbols.
func GetQuotes(c *gin.Context) {
	var input QuotesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, fetchQuotes(c.Request.Context(), input.Symbols))
}

// LookupStock serves the stock search screen: quote plus company profile.
func LookupStock(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	ctx := c.Request.Context()

	key := fmt.Sprintf("stock:%s:lookup", symbol)
	if cached, err := config.Rdb.Get(ctx, key).Result(); err == nil {
		c.Data(http.StatusOK, "application/json", []byte(cached))
		return
	}

	var result AlphaVantageResponse
	if err := avFetch(ctx, "GLOBAL_QUOTE", symbol, &result); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch stock data"})
		return
	}

	quote, err := quoteFromResponse(result)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid ticker or data not available"})
		return
	}

	overview := fetchOverview(ctx, symbol)

	dayHigh, _ := strconv.ParseFloat(result.GlobalQuote.High, 64)
	dayLow, _ := strconv.ParseFloat(result.GlobalQuote.Low, 64)
	volume, _ := strconv.ParseInt(result.GlobalQuote.Volume, 10, 64)
	marketCap, _ := strconv.ParseInt(overview.MarketCapitalization, 10, 64)

	longName := overview.Name
	if longName == "" {
		longName = symbol
	}

	payload := gin.H{
		"symbol":        symbol,
		"longName":      longName,
		"sector":        overview.Sector,
		"currentPrice":  quote.CurrentPrice,
		"previousClose": quote.PreviousClose,
		"dayHigh":       dayHigh,
		"dayLow":        dayLow,
		"marketCap":     marketCap,
		"volume":        volume,
	}

	if data, err := json.Marshal(payload); err == nil {
		config.Rdb.Set(ctx, key, data, quoteExpiration)
	}
	c.JSON(http.StatusOK, payload)
}

func fetchOverview(ctx context.Context, symbol string) CompanyOverview {
	key := fmt.Sprintf("stock:%s:overview", symbol)

	var overview CompanyOverview
	if cached, err := config.Rdb.Get(ctx, key).Result(); err == nil {
		if err := json.Unmarshal([]byte(cached), &overview); err == nil {
			return overview
		}
	}

	if err := avFetch(ctx, "OVERVIEW", symbol, &overview); err != nil {
		return CompanyOverview{}
	}
	if data, err := json.Marshal(overview); err == nil {
		config.Rdb.Set(ctx, key, data, overviewExpiration)
	}
	return overview
}

func GetHistoricalData(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	ctx := c.Request.Context()

	// Check Redis cache
	cachedData, err := config.Rdb.Get(ctx, fmt.Sprintf("stock:%s:history", symbol)).Result()
	if err == nil {
		var historicalData []models.StockPrice
		if err := json.Unmarshal([]byte(cachedData), &historicalData); err == nil {
			c.JSON(http.StatusOK, historicalData)
			return
		}
	}

	var result AlphaVantageResponse
	if err := avFetch(ctx, "TIME_SERIES_DAILY", symbol, &result); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch historical data"})
		return
	}

	if len(result.TimeSeriesDaily) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Historical data not found"})
		return
	}

	var historicalData []models.StockPrice
	for date, bar := range result.TimeSeriesDaily {
		closePrice, err := strconv.ParseFloat(bar.Close, 64)
		if err != nil {
			continue
		}
		timestamp, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		historicalData = append(historicalData, models.StockPrice{
			Symbol:    symbol,
			Price:     closePrice,
			Timestamp: timestamp,
		})
	}

	if err := database.CreateInBatches(historicalData, 100); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store historical data"})
		return
	}

	if jsonData, err := json.Marshal(historicalData); err == nil {
		config.Rdb.Set(ctx, fmt.Sprintf("stock:%s:history", symbol), jsonData, historyExpiration)
	}

	c.JSON(http.StatusOK, historicalData)
}
