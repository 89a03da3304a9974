package render

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fenilmodi00/market-pulse/models"
)

//go:embed templates/dashboard.html
var dashboardTemplate string

// Element IDs of the dashboard page.
const (
	GainersSinkID    = "gainers-body"
	LosersSinkID     = "losers-body"
	BreadthSinkID    = "breadth-widget"
	ChartCanvasID    = "market-chart"
	NewsSinkID       = "news-list"
	BlogSinkID       = "blog-container"
	IndicesSinkID    = "indices-strip"
	MenuButtonID     = "mobile-menu-button"
	MenuPanelID      = "mobile-menu"
	GeneratedAtID    = "generated-at"
	moverTableColumn = 3
)

// Dashboard is one parsed copy of the dashboard page. It is not safe for
// concurrent use; build one per request.
type Dashboard struct {
	document *goquery.Document
}

// NewDashboard parses the embedded page.
func NewDashboard() (*Dashboard, error) {
	return ParseDashboard(dashboardTemplate)
}

// ParseDashboard parses page markup that carries the dashboard element IDs.
func ParseDashboard(markup string) (*Dashboard, error) {
	document, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard markup: %w", err)
	}
	return &Dashboard{document: document}, nil
}

// Sink returns the DOM sink for the element with the given ID.
func (d *Dashboard) Sink(id string) (*DOMSink, error) {
	selection, err := d.element(id)
	if err != nil {
		return nil, err
	}
	return NewDOMSink(selection, moverTableColumn), nil
}

// MarketSinks returns the gainers, losers and breadth sinks.
func (d *Dashboard) MarketSinks() (MarketSinks, error) {
	gainers, err := d.Sink(GainersSinkID)
	if err != nil {
		return MarketSinks{}, err
	}
	losers, err := d.Sink(LosersSinkID)
	if err != nil {
		return MarketSinks{}, err
	}
	breadth, err := d.Sink(BreadthSinkID)
	if err != nil {
		return MarketSinks{}, err
	}
	return MarketSinks{Gainers: gainers, Losers: losers, Breadth: breadth}, nil
}

// SetChartData stores chart data on the canvas for the page script to pick up.
func (d *Dashboard) SetChartData(chart models.ChartData) error {
	canvas, err := d.element(ChartCanvasID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(chart)
	if err != nil {
		return fmt.Errorf("failed to encode chart data: %w", err)
	}
	canvas.SetAttr("data-chart", string(payload))
	return nil
}

// SetGeneratedAt stamps the footer with the render time.
func (d *Dashboard) SetGeneratedAt(at time.Time) {
	d.document.Find("#" + GeneratedAtID).SetText("Updated " + at.UTC().Format("2006-01-02 15:04 MST"))
}

// HTML serializes the document.
func (d *Dashboard) HTML() (string, error) {
	return d.document.Html()
}

// Document exposes the underlying document for inspection.
func (d *Dashboard) Document() *goquery.Document {
	return d.document
}

func (d *Dashboard) element(id string) (*goquery.Selection, error) {
	selection := d.document.Find("#" + id)
	if selection.Length() == 0 {
		return nil, fmt.Errorf("dashboard element #%s not found", id)
	}
	return selection.First(), nil
}
