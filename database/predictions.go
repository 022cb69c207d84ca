package database

import (
	"time"

	"crypto-predictor/config"
	"crypto-predictor/models"
)

// LatestFreshPrediction returns the newest stored prediction for a coin
// created within the given window, or gorm.ErrRecordNotFound.
func LatestFreshPrediction(coinName string, window time.Duration) (*models.Prediction, error) {
	var prediction models.Prediction
	err := config.DB.
		Where("coin_name = ? AND created_at > ?", coinName, time.Now().Add(-window)).
		Order("created_at DESC").
		First(&prediction).Error
	if err != nil {
		return nil, err
	}
	return &prediction, nil
}

// LatestPricedPrediction returns the newest stored prediction for a coin that
// carries a usable price. Used by the price resolver as a continuity source
// when both market APIs are unreachable.
func LatestPricedPrediction(coinName string) (*models.Prediction, error) {
	var prediction models.Prediction
	err := config.DB.
		Where("coin_name = ? AND current_price > 0", coinName).
		Order("created_at DESC").
		First(&prediction).Error
	if err != nil {
		return nil, err
	}
	return &prediction, nil
}

// SavePrediction appends a prediction row. Rows are never updated or deleted.
func SavePrediction(prediction *models.Prediction) error {
	return config.DB.Create(prediction).Error
}

// WatchedCoinNames returns the distinct coin names present in any user's
// watchlist.
func WatchedCoinNames() ([]string, error) {
	var names []string
	err := config.DB.Model(&models.WatchlistEntry{}).
		Distinct("coin_name").
		Pluck("coin_name", &names).Error
	return names, err
}
