package handlers

import (
	"context"
	"time"

	"github.com/fenilmodi00/market-pulse/models"
	"github.com/fenilmodi00/market-pulse/render"
	"github.com/fenilmodi00/market-pulse/services"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// NewsSource provides dashboard headlines
type NewsSource interface {
	LatestNews(ctx context.Context) []models.NewsItem
}

type DashboardHandler struct {
	Pipeline   *services.MarketDataPipeline
	MarketData *services.MarketDataService
	News       NewsSource
}

func NewDashboardHandler(pipeline *services.MarketDataPipeline, marketData *services.MarketDataService, news NewsSource) *DashboardHandler {
	return &DashboardHandler{
		Pipeline:   pipeline,
		MarketData: marketData,
		News:       news,
	}
}

// GetDashboard renders the dashboard page. Pipeline failures are shown in
// the movers and breadth widgets and still produce a 200 page.
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	page, err := h.render(c.UserContext())
	if err != nil {
		logrus.WithField("component", "DashboardHandler").WithError(err).Error("Failed to render dashboard")
		return c.Status(fiber.StatusInternalServerError).SendString("Dashboard unavailable.")
	}

	c.Type("html", "utf-8")
	return c.SendString(page)
}

func (h *DashboardHandler) render(ctx context.Context) (string, error) {
	dashboard, err := render.NewDashboard()
	if err != nil {
		return "", err
	}

	sinks, err := dashboard.MarketSinks()
	if err != nil {
		return "", err
	}

	// failures are already written into the sinks and logged by the pipeline
	_, _ = h.Pipeline.FetchMarketData(ctx, sinks)

	indices, err := dashboard.Sink(render.IndicesSinkID)
	if err != nil {
		return "", err
	}
	render.RenderIndices(h.MarketData.GetMarketIndices(), indices)

	news, err := dashboard.Sink(render.NewsSinkID)
	if err != nil {
		return "", err
	}
	render.RenderNews(h.News.LatestNews(ctx), news)

	blog, err := dashboard.Sink(render.BlogSinkID)
	if err != nil {
		return "", err
	}
	render.RenderBlog(h.MarketData.BlogPosts(), blog)

	if err := dashboard.SetChartData(h.MarketData.ChartData()); err != nil {
		return "", err
	}
	dashboard.SetGeneratedAt(time.Now())

	return dashboard.HTML()
}
