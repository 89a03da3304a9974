package handlers

import (
	"context"

	"github.com/fenilmodi00/market-pulse/models"
	"github.com/fenilmodi00/market-pulse/render"
	"github.com/fenilmodi00/market-pulse/services"
	"github.com/fenilmodi00/market-pulse/shared"
	"github.com/gofiber/fiber/v2"
)

// SnapshotLister reads persisted movers snapshots
type SnapshotLister interface {
	RecentSnapshots(ctx context.Context, limit int) ([]models.MoverSnapshot, error)
}

type MarketHandler struct {
	Pipeline   *services.MarketDataPipeline
	MarketData *services.MarketDataService
	// Snapshots is nil when no database is configured
	Snapshots SnapshotLister
}

func NewMarketHandler(pipeline *services.MarketDataPipeline, marketData *services.MarketDataService, snapshots SnapshotLister) *MarketHandler {
	return &MarketHandler{
		Pipeline:   pipeline,
		MarketData: marketData,
		Snapshots:  snapshots,
	}
}

// GetMovers returns normalized top gainers and losers
func (h *MarketHandler) GetMovers(c *fiber.Ctx) error {
	movers, err := h.Pipeline.LoadMovers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    movers,
	})
}

// GetBreadth returns advancing/declining/unchanged counts with their shares
func (h *MarketHandler) GetBreadth(c *fiber.Ctx) error {
	counts := h.MarketData.MockBreadth()
	shares := make(fiber.Map, 3)
	for _, share := range render.BreadthShares(*counts) {
		shares[share.Class] = share.Percent
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"counts": counts,
			"total":  counts.Total(),
			"shares": shares,
		},
	})
}

// GetChart returns the intraday chart series
func (h *MarketHandler) GetChart(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.MarketData.ChartData(),
	})
}

// GetMarketIndices returns current market indices with mock data
func (h *MarketHandler) GetMarketIndices(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.MarketData.GetMarketIndices(),
	})
}

// GetSnapshots returns recently recorded movers snapshots
func (h *MarketHandler) GetSnapshots(c *fiber.Ctx) error {
	if h.Snapshots == nil {
		return respondError(c, shared.NewServiceError(
			shared.ErrorCategoryConfiguration,
			"DATABASE_NOT_CONFIGURED",
			"Snapshots are unavailable: DATABASE_URL is not set.",
			"MarketHandler",
			"get_snapshots",
			false,
			nil,
		))
	}

	limit := services.ClampSnapshotLimit(c.QueryInt("limit", 0))
	snapshots, err := h.Snapshots.RecentSnapshots(c.UserContext(), limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    snapshots,
		"count":   len(snapshots),
	})
}
