package predictor

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crypto-predictor/config"
	"crypto-predictor/database"
	"crypto-predictor/market"
	"crypto-predictor/models"
)

const (
	defaultMLBase = "http://localhost:5001/api/predict"

	// StalenessWindow is how long a stored prediction stays reusable.
	StalenessWindow = time.Hour

	timeFrame = "24h"
)

// Generator produces trend signals for coins. It first asks the external
// prediction service; when that is unreachable it synthesizes the signal
// locally. Prices always come from the market resolver, never from the
// external service. Generate never fails.
type Generator struct {
	market *market.Client
	http   *resty.Client
	mlBase string
	logger *logrus.Logger
}

func NewGenerator(marketClient *market.Client, logger *logrus.Logger) *Generator {
	return &Generator{
		market: marketClient,
		http:   resty.New().SetTimeout(10 * time.Second),
		mlBase: config.GetEnv("ML_API_URL", defaultMLBase),
		logger: logger,
	}
}

// GetOrGenerate returns the newest stored prediction for the coin if one
// exists within the staleness window, otherwise generates and persists a new
// one. refresh forces generation regardless of stored rows. Old rows are
// retained either way.
func (g *Generator) GetOrGenerate(coinName string, refresh bool) (*models.Prediction, error) {
	if !refresh {
		prediction, err := database.LatestFreshPrediction(coinName, StalenessWindow)
		if err == nil {
			return prediction, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	prediction := g.Generate(coinName)
	if err := database.SavePrediction(prediction); err != nil {
		return nil, err
	}
	return prediction, nil
}

// Generate builds a prediction for the coin. Always succeeds: external
// failures fall through to the local mock path.
func (g *Generator) Generate(coinName string) *models.Prediction {
	quote := g.market.FetchCurrentPrice(coinName)

	trend, confidence := g.randomSignal()
	var rsi, macd, volatility float64
	var historical *models.HistoricalSeries

	delegate, err := g.fetchModelPrediction(coinName)
	if err != nil {
		g.logger.WithError(err).WithField("coin", coinName).Info("Prediction service unavailable, generating locally")
		rsi, macd, volatility = deriveIndicators(trend)
	} else {
		// Trust the model for the signal only; price fields are always
		// taken from the independently resolved quote.
		trend = delegate.PredictedTrend
		confidence = delegate.ConfidenceScore
		rsi, macd, volatility = deriveIndicators(trend)
		if delegate.RSI != 0 {
			rsi = delegate.RSI
		}
		if delegate.MACD != 0 {
			macd = delegate.MACD
		}
		if delegate.Volatility != 0 {
			volatility = delegate.Volatility
		}
		historical = delegate.HistoricalData
	}

	changePercent := deriveChangePercent(trend, quote.Change24h)
	predictedPrice := quote.Price * (1 + changePercent/100)

	return &models.Prediction{
		CoinName:           coinName,
		PredictedTrend:     trend,
		ConfidenceScore:    confidence,
		RSI:                rsi,
		MACD:               macd,
		Volatility:         volatility,
		CurrentPrice:       quote.Price,
		PredictedPrice:     predictedPrice,
		PriceChangePercent: changePercent,
		TimeFrame:          timeFrame,
		DetailedAnalysis:   composeAnalysis(coinName, trend, quote, changePercent, predictedPrice, rsi, macd, volatility),
		HistoricalData:     historical,
	}
}

type modelResponse struct {
	PredictedTrend  string                   `json:"predictedTrend"`
	ConfidenceScore float64                  `json:"confidenceScore"`
	RSI             float64                  `json:"rsi"`
	MACD            float64                  `json:"macd"`
	Volatility      float64                  `json:"volatility"`
	HistoricalData  *models.HistoricalSeries `json:"historicalData"`
}

func (g *Generator) fetchModelPrediction(coinName string) (*modelResponse, error) {
	var result modelResponse
	resp, err := g.http.R().
		SetResult(&result).
		Get(g.mlBase + "/" + coinName)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("prediction service returned %s", resp.Status())
	}

	switch result.PredictedTrend {
	case models.TrendBuy, models.TrendHold, models.TrendSell:
	default:
		return nil, fmt.Errorf("prediction service returned unknown trend %q", result.PredictedTrend)
	}

	return &result, nil
}

func (g *Generator) randomSignal() (string, float64) {
	trends := []string{models.TrendBuy, models.TrendHold, models.TrendSell}
	trend := trends[rand.Intn(len(trends))]
	confidence := float64(rand.Intn(41) + 60)
	return trend, confidence
}

// deriveChangePercent biases the forecast to agree with recent momentum for
// directional calls.
func deriveChangePercent(trend string, change24h float64) float64 {
	switch trend {
	case models.TrendBuy:
		if change24h > 0 {
			return rand.Float64()*10 + 3
		}
		return rand.Float64()*8 + 2
	case models.TrendSell:
		if change24h < 0 {
			return rand.Float64()*-10 - 3
		}
		return rand.Float64()*-8 - 2
	default:
		return rand.Float64()*4 - 2
	}
}

// deriveIndicators picks technical indicator values consistent with the
// trend: oversold RSI and positive MACD for Buy, overbought and negative for
// Sell, neutral for Hold.
func deriveIndicators(trend string) (rsi, macd, volatility float64) {
	switch trend {
	case models.TrendBuy:
		rsi = 25 + rand.Float64()*15
		macd = rand.Float64()*0.5 + 0.05
	case models.TrendSell:
		rsi = 65 + rand.Float64()*15
		macd = rand.Float64()*-0.5 - 0.05
	default:
		rsi = 40 + rand.Float64()*20
		macd = rand.Float64()*0.2 - 0.1
	}
	volatility = rand.Float64()*2 + 1
	return rsi, macd, volatility
}

func composeAnalysis(coinName, trend string, quote market.PriceQuote, changePercent, predictedPrice, rsi, macd, volatility float64) string {
	direction := "positive"
	if quote.Change24h < 0 {
		direction = "negative"
	}

	switch trend {
	case models.TrendBuy:
		return fmt.Sprintf("%s is showing bullish signals with RSI at %.2f indicating the asset may be undervalued. "+
			"The MACD at %.3f suggests positive momentum is building. The current price is $%.2f with a %s 24-hour change of %.2f%%. "+
			"Based on our AI model, we project a potential %.2f%% increase over the next %s to approximately $%.2f, "+
			"with volatility estimated at %.2f%%. Technical indicators and market sentiment are aligned for a possible upward movement.",
			coinName, rsi, macd, quote.Price, direction, quote.Change24h, changePercent, timeFrame, predictedPrice, volatility)
	case models.TrendSell:
		return fmt.Sprintf("%s is displaying bearish signals with RSI at %.2f suggesting the asset may be overbought. "+
			"The MACD at %.3f indicates negative momentum is developing. The current price is $%.2f with a %s 24-hour change of %.2f%%. "+
			"Our analysis projects a %.2f%% decrease over the next %s to approximately $%.2f, with volatility at %.2f%%. "+
			"Market conditions and technical indicators point to a potential downward correction.",
			coinName, rsi, macd, quote.Price, direction, quote.Change24h, -changePercent, timeFrame, predictedPrice, volatility)
	default:
		movement := fmt.Sprintf("%.2f%% increase", changePercent)
		if changePercent < 0 {
			movement = fmt.Sprintf("%.2f%% decrease", -changePercent)
		}
		return fmt.Sprintf("%s is showing mixed signals with RSI at %.2f in neutral territory. "+
			"The MACD at %.3f suggests minimal directional momentum. The current price is $%.2f with a %s 24-hour change of %.2f%%. "+
			"We expect relatively flat price action with a possible %s over the next %s to approximately $%.2f, and volatility of %.2f%%. "+
			"Market conditions appear stable with no strong bullish or bearish indicators.",
			coinName, rsi, macd, quote.Price, direction, quote.Change24h, movement, timeFrame, predictedPrice, volatility)
	}
}
