package market

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// TrendingCoin is one entry of the top-by-market-cap listing.
type TrendingCoin struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Symbol         string  `json:"symbol"`
	Price          float64 `json:"price"`
	PriceChange24h float64 `json:"priceChange24h"`
	Positive       bool    `json:"positive"`
}

type marketCoin struct {
	ID                       string  `json:"id"`
	Name                     string  `json:"name"`
	Symbol                   string  `json:"symbol"`
	CurrentPrice             float64 `json:"current_price"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
}

// FetchTrending returns the top five coins by market cap from CoinGecko.
// Unlike price resolution this has no fallback; callers surface the error.
func (c *Client) FetchTrending(ctx context.Context) ([]TrendingCoin, error) {
	var result []marketCoin
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"vs_currency":             "usd",
			"order":                   "market_cap_desc",
			"per_page":                "5",
			"page":                    "1",
			"sparkline":               "false",
			"price_change_percentage": "24h",
		}).
		SetResult(&result).
		Get(c.geckoBase + "/coins/markets")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("CoinGecko returned %s", resp.Status())
	}

	trending := make([]TrendingCoin, 0, len(result))
	for _, coin := range result {
		trending = append(trending, TrendingCoin{
			ID:             coin.ID,
			Name:           coin.Name,
			Symbol:         strings.ToUpper(coin.Symbol),
			Price:          coin.CurrentPrice,
			PriceChange24h: coin.PriceChangePercentage24h,
			Positive:       coin.PriceChangePercentage24h >= 0,
		})
	}

	c.logger.WithFields(logrus.Fields{"count": len(trending)}).Debug("Fetched trending coins")
	return trending, nil
}
