package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"crypto-predictor/config"
	"crypto-predictor/handlers"
	"crypto-predictor/market"
	"crypto-predictor/middleware"
	"crypto-predictor/models"
	"crypto-predictor/predictor"
	"crypto-predictor/scheduler"
)

func main() {
	envErr := godotenv.Load()
	config.InitLogger()
	if envErr != nil {
		config.Log.Warn("No .env file found, using environment as-is")
	}

	config.InitDB()
	config.InitRedis()

	sqlDB, err := config.DB.DB()
	if err != nil {
		config.Log.WithError(err).Fatal("Failed to get database instance")
	}
	defer sqlDB.Close()

	if err := config.DB.AutoMigrate(&models.User{}, &models.WatchlistEntry{}, &models.Prediction{}); err != nil {
		config.Log.WithError(err).Fatal("Failed to migrate models")
	}

	marketClient := market.NewClient(config.Log)
	generator := predictor.NewGenerator(marketClient, config.Log)
	handlers.Init(marketClient, generator)

	if schedule := os.Getenv("REFRESH_SCHEDULE"); schedule != "" {
		refresher := scheduler.NewRefresher(generator, config.Log)
		if err := refresher.Start(schedule); err != nil {
			config.Log.WithError(err).Fatal("Invalid REFRESH_SCHEDULE")
		}
		defer refresher.Stop()
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.GetEnv("CLIENT_ORIGIN", "http://localhost:3000")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Content-Type", "x-auth-token"},
		AllowCredentials: true,
	}))

	api := router.Group("/api")

	// Public routes
	api.POST("/auth/register", handlers.Register)
	api.POST("/auth", handlers.Login)
	api.GET("/coins/trending", handlers.GetTrending)

	// Protected routes
	auth := api.Group("/")
	auth.Use(middleware.Auth())
	{
		auth.GET("/auth", handlers.GetUser)
		auth.PUT("/auth/update", handlers.UpdateProfile)
		auth.PUT("/auth/password", handlers.ChangePassword)
		auth.DELETE("/auth", handlers.DeleteAccount)
		auth.GET("/watchlist", handlers.GetWatchlist)
		auth.POST("/watchlist", handlers.AddCoin)
		auth.DELETE("/watchlist/:id", handlers.RemoveCoin)
		auth.GET("/predictions", handlers.GetPredictions)
		auth.GET("/predictions/:coin", handlers.GetPrediction)
	}

	port := config.GetEnv("PORT", "5000")
	config.Log.WithField("port", port).Info("Server starting")
	if err := router.Run(":" + port); err != nil {
		config.Log.WithError(err).Fatal("Server exited")
	}
}
