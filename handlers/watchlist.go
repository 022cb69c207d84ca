package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"crypto-predictor/config"
	"crypto-predictor/models"
)

type WatchlistInput struct {
	CoinName   string `json:"coinName" binding:"required"`
	CoinSymbol string `json:"coinSymbol" binding:"required"`
}

// GetWatchlist lists the caller's tracked coins, newest first.
func GetWatchlist(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var watchlist []models.WatchlistEntry
	if err := config.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&watchlist).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch watchlist"})
		return
	}

	c.JSON(http.StatusOK, watchlist)
}

// AddCoin adds a coin to the caller's watchlist. Symbols are normalized to
// upper case and duplicated symbols are rejected per owner.
func AddCoin(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var input WatchlistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	symbol := strings.ToUpper(input.CoinSymbol)

	var existing models.WatchlistEntry
	err := config.DB.Where("user_id = ? AND coin_symbol = ?", userID, symbol).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Coin already in watchlist"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	entry := models.WatchlistEntry{
		UserID:     userID,
		CoinName:   input.CoinName,
		CoinSymbol: symbol,
	}

	if err := config.DB.Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add coin"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// RemoveCoin deletes a watchlist entry after checking the caller owns it.
func RemoveCoin(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	entryID := c.Param("id")

	var entry models.WatchlistEntry
	if err := config.DB.First(&entry, entryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Watchlist item not found"})
		return
	}

	if entry.UserID != userID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
		return
	}

	if err := config.DB.Delete(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove coin"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Watchlist item removed"})
}
