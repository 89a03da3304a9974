package render

import (
	"math"
	"strconv"

	"github.com/fenilmodi00/market-pulse/models"
)

const (
	MoversUnavailableText  = "Data unavailable."
	BreadthUnavailableText = "Breadth data unavailable."
	// NoPercentText replaces a share when the breadth total is zero
	NoPercentText = "—"

	GainerRowClass = "gainer"
	LoserRowClass  = "loser"
)

// RenderMovers writes gainers and losers into their sinks, one row per record in
// input order. A nil or malformed result shows the unavailable placeholder in both.
func RenderMovers(result *models.MoversResult, gainers, losers Sink) {
	if !result.IsWellFormed() {
		gainers.ShowMessage(MoversUnavailableText)
		losers.ShowMessage(MoversUnavailableText)
		return
	}

	gainers.Replace(moverRows(result.Gainers, GainerRowClass))
	losers.Replace(moverRows(result.Losers, LoserRowClass))
}

func moverRows(records []models.MoverRecord, class string) []Row {
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, Row{
			Class: class,
			Cells: []string{record.Symbol, "$" + record.Price, record.ChangePercent + "%"},
		})
	}
	return rows
}

// BreadthShare is one bucket of a breadth widget.
type BreadthShare struct {
	Label   string
	Class   string
	Count   int
	Percent string
}

// BreadthShares computes rounded percentage shares for the three buckets.
// With a zero total every percentage is NoPercentText.
func BreadthShares(counts models.BreadthCounts) []BreadthShare {
	total := counts.Total()
	percent := func(count int) string {
		if total <= 0 {
			return NoPercentText
		}
		return strconv.Itoa(int(math.Round(float64(count)/float64(total)*100))) + "%"
	}

	return []BreadthShare{
		{Label: "Advancing", Class: "advancing", Count: counts.Advancing, Percent: percent(counts.Advancing)},
		{Label: "Declining", Class: "declining", Count: counts.Declining, Percent: percent(counts.Declining)},
		{Label: "Unchanged", Class: "unchanged", Count: counts.Unchanged, Percent: percent(counts.Unchanged)},
	}
}

// RenderBreadth writes the breadth shares, or a placeholder when counts is nil.
func RenderBreadth(counts *models.BreadthCounts, sink Sink) {
	if counts == nil {
		sink.ShowMessage(BreadthUnavailableText)
		return
	}

	shares := BreadthShares(*counts)
	rows := make([]Row, 0, len(shares))
	for _, share := range shares {
		rows = append(rows, Row{
			Class: share.Class,
			Cells: []string{share.Label, share.Percent},
		})
	}
	sink.Replace(rows)
}

// RenderIndices writes the index strip.
func RenderIndices(indices []models.MarketIndex, sink Sink) {
	rows := make([]Row, 0, len(indices))
	for _, index := range indices {
		class := "negative"
		if index.IsPositive {
			class = "positive"
		}
		rows = append(rows, Row{
			Class: class,
			Cells: []string{
				index.Name,
				strconv.FormatFloat(index.Value, 'f', 2, 64),
				strconv.FormatFloat(index.ChangePercent, 'f', 2, 64) + "%",
			},
		})
	}
	sink.Replace(rows)
}

// RenderNews writes headlines, each linked to its article.
func RenderNews(items []models.NewsItem, sink Sink) {
	if len(items) == 0 {
		sink.ShowMessage("No news available.")
		return
	}
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, Row{
			Class: "news-item",
			Cells: []string{item.Title, item.Source},
			Href:  item.URL,
		})
	}
	sink.Replace(rows)
}

// RenderBlog writes blog post cards.
func RenderBlog(posts []models.BlogPost, sink Sink) {
	if len(posts) == 0 {
		sink.ShowMessage("No posts yet.")
		return
	}
	rows := make([]Row, 0, len(posts))
	for _, post := range posts {
		rows = append(rows, Row{
			Class: "blog-card card",
			Cells: []string{post.Title, post.Excerpt, post.Author},
			Href:  post.URL,
		})
	}
	sink.Replace(rows)
}
