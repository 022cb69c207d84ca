package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"crypto-predictor/config"
	"crypto-predictor/market"
)

const (
	trendingCacheKey = "coins:trending"
	trendingCacheTTL = 5 * time.Minute
)

// GetTrending returns the top five coins by market cap. Responses are cached
// in Redis for a short TTL when Redis is available.
func GetTrending(c *gin.Context) {
	if config.Rdb != nil {
		cached, err := config.Rdb.Get(config.Ctx, trendingCacheKey).Result()
		if err == nil {
			var coins []market.TrendingCoin
			if err := json.Unmarshal([]byte(cached), &coins); err == nil {
				c.JSON(http.StatusOK, coins)
				return
			}
		}
	}

	coins, err := Market.FetchTrending(c.Request.Context())
	if err != nil {
		config.Log.WithError(err).Error("Failed to fetch trending coins")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		return
	}

	if config.Rdb != nil {
		if data, err := json.Marshal(coins); err == nil {
			config.Rdb.Set(config.Ctx, trendingCacheKey, data, trendingCacheTTL)
		}
	}

	c.JSON(http.StatusOK, coins)
}
