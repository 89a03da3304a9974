package services

import (
	"github.com/fenilmodi00/market-pulse/models"
)

// MarketDataService serves the widgets that are not fetched live.
type MarketDataService struct{}

func NewMarketDataService() *MarketDataService {
	return &MarketDataService{}
}

// MockBreadth returns the fixed breadth snapshot shown on the dashboard
func (s *MarketDataService) MockBreadth() *models.BreadthCounts {
	return &models.BreadthCounts{
		Advancing: 2500,
		Declining: 500,
		Unchanged: 100,
	}
}

// ChartData returns the intraday index series for the chart widget
func (s *MarketDataService) ChartData() models.ChartData {
	return models.ChartData{
		Labels: []string{"9:30", "10:00", "10:30", "11:00", "11:30", "12:00", "12:30", "13:00", "13:30", "14:00", "14:30", "15:00", "15:30", "16:00"},
		Datasets: []models.ChartDataset{
			{
				Label:           "S&P 500",
				Data:            []float64{5021.8, 5028.4, 5019.2, 5034.6, 5041.1, 5038.7, 5045.3, 5052.9, 5049.4, 5056.2, 5061.8, 5058.1, 5066.5, 5070.3},
				BorderColor:     "#22c55e",
				BackgroundColor: "rgba(34, 197, 94, 0.15)",
				Fill:            true,
				Tension:         0.35,
			},
		},
	}
}

// GetMarketIndices returns current market indices with mock data
func (s *MarketDataService) GetMarketIndices() []models.MarketIndex {
	return []models.MarketIndex{
		{
			ID:            "spx",
			Name:          "S&P 500",
			Value:         5070.30,
			Change:        48.52,
			ChangePercent: 0.97,
			IsPositive:    true,
		},
		{
			ID:            "ndx",
			Name:          "NASDAQ 100",
			Value:         17845.12,
			Change:        212.44,
			ChangePercent: 1.20,
			IsPositive:    true,
		},
		{
			ID:            "dji",
			Name:          "DOW JONES",
			Value:         38612.24,
			Change:        -62.18,
			ChangePercent: -0.16,
			IsPositive:    false,
		},
		{
			ID:            "rut",
			Name:          "RUSSELL 2000",
			Value:         2041.87,
			Change:        11.05,
			ChangePercent: 0.54,
			IsPositive:    true,
		},
	}
}

// BlogPosts returns the posts featured on the dashboard
func (s *MarketDataService) BlogPosts() []models.BlogPost {
	return []models.BlogPost{
		{
			Title:   "Reading Market Breadth Without the Noise",
			Excerpt: "Advance/decline ratios tell you how many stocks are carrying the index. Here is how to use them.",
			Author:  "Research Desk",
			URL:     "/blog/reading-market-breadth",
		},
		{
			Title:   "Why Top Movers Lists Mislead New Traders",
			Excerpt: "Percentage moves on thinly traded names look spectacular and rarely last. A checklist before you chase.",
			Author:  "Trading Desk",
			URL:     "/blog/top-movers-mislead",
		},
		{
			Title:   "Building a Weekly Watchlist",
			Excerpt: "A repeatable routine for narrowing thousands of tickers down to a handful worth tracking.",
			Author:  "Research Desk",
			URL:     "/blog/weekly-watchlist",
		},
	}
}
