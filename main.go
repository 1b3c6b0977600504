package main

import (
	"log"
	"os"

	"club-tracker/config"
	"club-tracker/handlers"
	"club-tracker/middleware"
	"club-tracker/models"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize PostgreSQL and Redis connections.
	config.InitDB()
	config.InitRedis()

	// Get underlying SQL DB and close it properly
	sqlDB, err := config.DB.DB()
	if err != nil {
		log.Fatal("Failed to get database instance: ", err)
	}
	defer sqlDB.Close()

	// Auto-migrate models.
	if err := config.DB.AutoMigrate(
		&models.User{},
		&models.Transaction{},
		&models.StockPrice{},
		&models.Presentation{},
		&models.Vote{},
	); err != nil {
		log.Fatal("Failed to migrate models:", err)
	}

	router := gin.Default()
	router.Use(middleware.RequestID())

	// Public routes
	router.POST("/signup", handlers.Signup)
	router.POST("/login", handlers.Login)

	// Protected routes
	api := router.Group("/api")
	api.Use(middleware.JWTAuth())
	{
		api.GET("/portfolio", handlers.GetTransactions)
		api.POST("/transactions", handlers.AddTransaction)
		api.DELETE("/transactions/:id", handlers.DeleteTransaction)
		api.GET("/positions", handlers.GetPositions)
		api.PUT("/sections", handlers.ReassignSection)

		api.GET("/watchlist", handlers.GetWatchlist)
		api.POST("/watchlist", handlers.AddWatchlistEntry)

		api.GET("/stock/:symbol", handlers.LookupStock)
		api.GET("/prices/:symbol", handlers.GetStockPrice)
		api.POST("/quotes", handlers.GetQuotes)
		api.GET("/history/:symbol", handlers.GetHistoricalData)

		api.GET("/presentations", handlers.ListPresentations)
		api.POST("/presentations", handlers.CreatePresentation)
		api.POST("/presentations/:id/vote", handlers.VotePresentation)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	router.Run(":" + port)
}
