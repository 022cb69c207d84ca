package models

import (
	"gorm.io/gorm"
)

// Trend signal values.
const (
	TrendBuy  = "Buy"
	TrendHold = "Hold"
	TrendSell = "Sell"
)

// HistoricalSeries is the optional chart series returned by the external
// prediction service. Locally generated predictions leave it nil.
type HistoricalSeries struct {
	Dates     []string  `json:"dates"`
	Prices    []float64 `json:"prices"`
	Predicted []float64 `json:"predicted"`
}

// Prediction is one generated signal for a coin. Rows are immutable and
// accumulate as history; they are not owned by any user.
type Prediction struct {
	gorm.Model
	CoinName           string            `gorm:"index" json:"coinName"`
	PredictedTrend     string            `json:"predictedTrend"`
	ConfidenceScore    float64           `json:"confidenceScore"`
	RSI                float64           `json:"rsi"`
	MACD               float64           `json:"macd"`
	Volatility         float64           `json:"volatility"`
	CurrentPrice       float64           `json:"currentPrice"`
	PredictedPrice     float64           `json:"predictedPrice"`
	PriceChangePercent float64           `json:"priceChangePercent"`
	TimeFrame          string            `gorm:"default:24h" json:"timeFrame"`
	DetailedAnalysis   string            `gorm:"type:text" json:"detailedAnalysis"`
	HistoricalData     *HistoricalSeries `gorm:"serializer:json" json:"historicalData,omitempty"`
}
