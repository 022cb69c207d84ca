package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crypto-predictor/config"
	"crypto-predictor/market"
	"crypto-predictor/models"
	"crypto-predictor/predictor"
)

// Package-level collaborators wired from main. Tests swap these for
// instances pointed at fake upstreams.
var (
	Market    *market.Client
	Generator *predictor.Generator
)

// Init wires the market client and prediction generator used by handlers.
func Init(marketClient *market.Client, generator *predictor.Generator) {
	Market = marketClient
	Generator = generator
}

// GetPrediction returns the prediction for one coin, reusing a stored row
// younger than the staleness window unless refresh=true is given.
func GetPrediction(c *gin.Context) {
	coinName := c.Param("coin")
	refresh := c.Query("refresh") == "true"

	prediction, err := Generator.GetOrGenerate(coinName, refresh)
	if err != nil {
		config.Log.WithError(err).WithField("coin", coinName).Error("Failed to produce prediction")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, prediction)
}

// GetPredictions returns predictions for every coin in the caller's
// watchlist. An empty watchlist yields an empty array.
func GetPredictions(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var watchlist []models.WatchlistEntry
	if err := config.DB.Where("user_id = ?", userID).Find(&watchlist).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch watchlist"})
		return
	}

	predictions := make([]*models.Prediction, 0, len(watchlist))
	for _, entry := range watchlist {
		prediction, err := Generator.GetOrGenerate(entry.CoinName, false)
		if err != nil {
			config.Log.WithError(err).WithField("coin", entry.CoinName).Error("Failed to produce prediction")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
			return
		}
		predictions = append(predictions, prediction)
	}

	c.JSON(http.StatusOK, predictions)
}
