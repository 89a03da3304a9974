package models

import (
	"time"

	"github.com/google/uuid"
)

// MoverRecord is a normalized top mover. Price and ChangePercent always carry
// exactly two fractional digits.
type MoverRecord struct {
	Symbol        string `json:"symbol"`
	Price         string `json:"price"`
	ChangePercent string `json:"change_percent"`
}

// MoversResult holds gainers and losers in the order the quotes API returned them.
// A nil slice marks the result as malformed; use EmptyMoversResult for "no data".
type MoversResult struct {
	Gainers []MoverRecord `json:"gainers"`
	Losers  []MoverRecord `json:"losers"`
}

// EmptyMoversResult returns a well-formed result with no rows.
func EmptyMoversResult() *MoversResult {
	return &MoversResult{
		Gainers: []MoverRecord{},
		Losers:  []MoverRecord{},
	}
}

// IsWellFormed reports whether both sides are present.
func (r *MoversResult) IsWellFormed() bool {
	return r != nil && r.Gainers != nil && r.Losers != nil
}

// BreadthCounts is the number of advancing, declining and unchanged instruments.
type BreadthCounts struct {
	Advancing int `json:"advancing"`
	Declining int `json:"declining"`
	Unchanged int `json:"unchanged"`
}

// Total returns the sum of all three buckets.
func (b BreadthCounts) Total() int {
	return b.Advancing + b.Declining + b.Unchanged
}

// MarketIndex represents a stock market index with current value and change information
type MarketIndex struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Value         float64 `json:"value"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	IsPositive    bool    `json:"is_positive"`
}

// ChartDataset mirrors a Chart.js dataset.
type ChartDataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BorderColor     string    `json:"borderColor"`
	BackgroundColor string    `json:"backgroundColor"`
	Fill            bool      `json:"fill"`
	Tension         float64   `json:"tension"`
}

// ChartData is the structure handed to the charting library on the page.
type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

type NewsItem struct {
	Title       string     `json:"title"`
	Source      string     `json:"source"`
	URL         string     `json:"url"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

type BlogPost struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Author  string `json:"author"`
	URL     string `json:"url"`
}

// MoverSnapshot is a persisted copy of one successful movers fetch.
type MoverSnapshot struct {
	ID        uuid.UUID     `json:"id"`
	FetchedAt time.Time     `json:"fetched_at"`
	Gainers   []MoverRecord `json:"gainers"`
	Losers    []MoverRecord `json:"losers"`
}
